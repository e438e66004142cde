package lightzhl

// Read-only constant tables for the LightZhl adaptive Huffman model and
// the match-length/displacement decompositions. Per spec §9 Design
// Notes, these are compile-time literals, never computed at init —
// mirroring the teacher's "static mutable tables" note turned into plain
// Go package-level const/var literals.

const (
	numSymbols   = 274 // 256 literals + 16 match-length codes + 2 sentinels
	symRecalc    = 272 // "recalculate groups" sentinel
	symEOS       = 273 // end-of-stream sentinel
	matchSymBase = 256 // first of the 16 match-length symbols

	matchMin    = 4   // spec §3: minimum total match length
	matchMaxOver = 517 // spec §3: maximum match-over
	maxRawRun   = 64  // spec §3: maximum literal run between matches

	nextRecalcReset = 4096 // spec §4.C: countdown reset after regrouping

	hashBucketBits = 15              // 32768 buckets, spec §4.D
	hashBuckets    = 1 << hashBucketBits
	hashLookahead  = 5 // bytes consumed by one rolling-hash update, spec §4.D
)

// initialGroupWidths and initialGroupBases lay out the decoder's 16
// groups over the 274-symbol permutation exactly as spec §4.C specifies:
// widths {2,3,3,4,4,4,4,4,4,4,4,4,4,5,5,5} with cumulative bases
// {0,4,12,20,36,52,68,84,100,116,132,148,164,180,212,244}. The last
// group's 32 slots cover positions 244..275; only 244..273 are ever
// assigned a real symbol; positions 274 and 275 are permanently unused
// slack (spec invariant 1 only requires the total span to be >= 274).
var initialGroupWidths = [16]uint8{2, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5}

var initialGroupBases = [16]uint16{0, 4, 12, 20, 36, 52, 68, 84, 100, 116, 132, 148, 164, 180, 212, 244}

// initialSymbolOrder maps permutation position -> symbol ID for the
// fixed starting table shared by encoder and decoder. Position 0..3 (the
// one 6-bit, width-2 group) holds the most common ANSI-text bytes; 4..19
// (the two 7-bit, width-3 groups) hold the 16 match-length symbols
// 256..271 exactly, with no slack; 20..179 (ten 8-bit, width-4 groups)
// hold 160 literal bytes in ascending order; 180..273 (three 9-bit,
// width-5 groups, with 2 slack slots at the very end) hold the remaining
// 92 literal bytes followed by the two sentinels 272 and 273.
//
// spec.md's prose additionally lists '3' among the width-2 symbols and
// describes the 7-bit group as also covering "a scattered set of common
// ASCII symbols"; neither fits the literal slot counts the given group
// widths allow (4 slots for 5 symbols; 16 slots already exactly filled
// by the 16 match-length codes). This table resolves that by dropping
// '3' from the 6-bit group and reserving the 7-bit groups entirely for
// match-length symbols — see DESIGN.md.
var initialSymbolOrder = [numSymbols]uint16{
	32, 48, 49, 50, 256, 257, 258, 259, 260, 261, 262, 263, 264, 265, 266, 267,
	268, 269, 270, 271, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11,
	12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27,
	28, 29, 30, 31, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44,
	45, 46, 47, 51, 52, 53, 54, 55, 56, 57, 58, 59, 60, 61, 62, 63,
	64, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74, 75, 76, 77, 78, 79,
	80, 81, 82, 83, 84, 85, 86, 87, 88, 89, 90, 91, 92, 93, 94, 95,
	96, 97, 98, 99, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111,
	112, 113, 114, 115, 116, 117, 118, 119, 120, 121, 122, 123, 124, 125, 126, 127,
	128, 129, 130, 131, 132, 133, 134, 135, 136, 137, 138, 139, 140, 141, 142, 143,
	144, 145, 146, 147, 148, 149, 150, 151, 152, 153, 154, 155, 156, 157, 158, 159,
	160, 161, 162, 163, 164, 165, 166, 167, 168, 169, 170, 171, 172, 173, 174, 175,
	176, 177, 178, 179, 180, 181, 182, 183, 184, 185, 186, 187, 188, 189, 190, 191,
	192, 193, 194, 195, 196, 197, 198, 199, 200, 201, 202, 203, 204, 205, 206, 207,
	208, 209, 210, 211, 212, 213, 214, 215, 216, 217, 218, 219, 220, 221, 222, 223,
	224, 225, 226, 227, 228, 229, 230, 231, 232, 233, 234, 235, 236, 237, 238, 239,
	240, 241, 242, 243, 244, 245, 246, 247, 248, 249, 250, 251, 252, 253, 254, 255,
	272, 273,
}

// matchOverEntry is one bucket of the match-over decomposition: a raw
// overlength in [matchOverTable[i].base, matchOverTable[i].base+1<<extraBits)
// decodes via symbol matchSymBase+8+i plus extraBits extra bits.
type matchOverEntry struct {
	extraBits uint32
	base      uint32
}

// matchOverTable covers overlengths [8, 517] via codes 264..271 (8
// codes); overlengths [0,7] are direct via codes 256..263 with no extra
// bits. Bucket sizes double (2,4,8,...,256) and sum to exactly 510,
// covering 8..517 with no gaps or overlap.
var matchOverTable = [8]matchOverEntry{
	{extraBits: 1, base: 8},
	{extraBits: 2, base: 10},
	{extraBits: 3, base: 14},
	{extraBits: 4, base: 22},
	{extraBits: 5, base: 38},
	{extraBits: 6, base: 70},
	{extraBits: 7, base: 134},
	{extraBits: 8, base: 262},
}

// displayPrefixEntry is one bucket of the displacement decomposition: a
// 3-bit prefix selects the bucket; the bucket's extraBits more bits (if
// any) give the offset within it, yielding the top 7 bits of the 16-bit
// displacement.
type displayPrefixEntry struct {
	extraBits uint32
	baseTop   uint32
}

// displayPrefixTable covers the top 7 bits of a displacement (d>>9,
// range 0..127) across 8 buckets selected by a 3-bit prefix. Bucket
// sizes {1,1,2,4,8,16,32,64} sum to exactly 128, biasing toward fewer
// bits for small, more common displacements.
var displayPrefixTable = [8]displayPrefixEntry{
	{extraBits: 0, baseTop: 0},
	{extraBits: 0, baseTop: 1},
	{extraBits: 1, baseTop: 2},
	{extraBits: 2, baseTop: 4},
	{extraBits: 3, baseTop: 8},
	{extraBits: 4, baseTop: 16},
	{extraBits: 5, baseTop: 32},
	{extraBits: 6, baseTop: 64},
}

package lightzhl

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// RefPack: a byte-aligned LZ77 codec, simpler and faster to decode than
// LightZhl at a worse compression ratio, sharing the same whole-buffer,
// non-adaptive framing discipline (spec §4.F). Unlike LightZhl, there is
// no ring buffer: matches reference the source buffer itself, since the
// decoder's reconstructed output is byte-identical to it.

const (
	refpackMagicLo       = 0xFB
	refpackFlagLarge     = 0x80 // magic high byte: 4-byte length instead of 3
	refpackFlagHasCompSz = 0x01 // magic high byte: extra compressed-size field precedes length

	refpackMaxDisp2 = 1 << 10 // 2-byte form: 10-bit displacement
	refpackMaxDisp3 = 1 << 14 // 3-byte form: 14-bit displacement
	refpackMaxDisp4 = 1 << 17 // 4-byte form: 17-bit displacement

	refpackMinMatch2 = 3
	refpackMaxMatch2 = 10
	refpackMinMatch3 = 4
	refpackMaxMatch3 = 67
	refpackMinMatch4 = 5
	refpackMaxMatch4 = 1028

	refpackLiteralBlockMax = 112 // largest standalone literal block, spec §4.F
	refpackEOFOpcodeBase   = 0xFC
	refpackLiteralOpcodeLo = 0xE0

	refpackHashBuckets = 1 << 16
	refpackLinkEntries = 1 << 17 // 128K, indexed by position & 0x1FFFF
	refpackLinkMask    = refpackLinkEntries - 1
	refpackSearchDepth = 128 // bounded hash-chain walk
)

// refpackHeader is the 5- to 10-byte framing spec §4.F and §6 "RefPack
// magic" describe: a 2-byte magic selecting the length-field width and
// whether a (skipped) compressed-size field precedes it, followed by
// the uncompressed length itself.
type refpackHeader struct {
	large             bool
	hasCompressedSize bool
	compressedSize    uint32
	uncompressedSize  uint32
}

func readRefpackHeader(r io.Reader) (refpackHeader, error) {
	var magic [2]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return refpackHeader{}, fmt.Errorf("refpack: reading magic: %w", ErrTruncated)
	}
	if magic[1] != refpackMagicLo {
		return refpackHeader{}, fmt.Errorf("%w: refpack magic low byte %#x", ErrHeaderMismatch, magic[1])
	}
	h := refpackHeader{
		large:             magic[0]&refpackFlagLarge != 0,
		hasCompressedSize: magic[0]&refpackFlagHasCompSz != 0,
	}
	width := 3
	if h.large {
		width = 4
	}
	if h.hasCompressedSize {
		v, err := readBigEndianUint(r, width)
		if err != nil {
			return refpackHeader{}, err
		}
		h.compressedSize = v
	}
	v, err := readBigEndianUint(r, width)
	if err != nil {
		return refpackHeader{}, err
	}
	h.uncompressedSize = v
	return h, nil
}

func readBigEndianUint(r io.Reader, width int) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		return 0, fmt.Errorf("refpack: reading length field: %w", ErrTruncated)
	}
	var v uint32
	for i := 0; i < width; i++ {
		v = (v << 8) | uint32(buf[i])
	}
	return v, nil
}

func writeBigEndianUint(w io.Writer, width int, v uint32) error {
	var buf [4]byte
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	_, err := w.Write(buf[:width])
	return err
}

// RefpackUncompressedSize reads a RefPack header from source and returns
// its declared uncompressed length, without decoding the payload (spec
// §6 "refpack_uncompressed_size").
func RefpackUncompressedSize(source io.Reader) (uint32, error) {
	h, err := readRefpackHeader(source)
	if err != nil {
		return 0, err
	}
	return h.uncompressedSize, nil
}

// RefpackEncodedSizeUpperBound returns a worst-case encoded size for a
// buffer of length rawLen: every byte becomes a literal inside
// maximally-sized 112-byte blocks, plus one opcode byte per block, plus
// 8 bytes for the header (RefpackEncode writes at most 6) and a final
// EOF opcode. Supplemented from
// `_examples/original_source/` per SPEC_FULL.md §9 — mirrors
// MaxCompressedSizeLightZhl's role of sizing a destination buffer
// without running the encoder twice.
func RefpackEncodedSizeUpperBound(rawLen int) int {
	blocks := (rawLen + refpackLiteralBlockMax - 1) / refpackLiteralBlockMax
	if blocks == 0 {
		blocks = 1
	}
	return 8 + rawLen + blocks + 1
}

// RefpackEncode compresses src and writes the header (2-byte magic plus a
// 3-byte, or for inputs over 0xFFFFFF bytes 4-byte, big-endian length)
// and payload to sink, returning the number of bytes written (spec §6
// "refpack_encode").
func RefpackEncode(src []byte, sink io.Writer) (int, error) {
	large := len(src) > 0x00FFFFFF
	magicHi := byte(0x10)
	width := 3
	if large {
		magicHi = 0x90
		width = 4
	}
	n := 0
	if _, err := sink.Write([]byte{magicHi, refpackMagicLo}); err != nil {
		return n, err
	}
	n += 2
	if err := writeBigEndianUint(sink, width, uint32(len(src))); err != nil {
		return n, err
	}
	n += width

	payload := refpackEncodePayload(src)
	if _, err := sink.Write(payload); err != nil {
		return n, err
	}
	n += len(payload)
	return n, nil
}

// refpackMatchLen compares src[a:] against src[b:] (a < b), up to
// maxLen bytes. Because src is the complete original buffer rather than
// output still under construction, self-overlapping matches (b-a <
// length) need no special casing: every index read is already present.
func refpackMatchLen(src []byte, a, b, maxLen int) int {
	n := 0
	for n < maxLen && b+n < len(src) {
		if src[a+n] != src[b+n] {
			break
		}
		n++
	}
	return n
}

// refpackCandidate is one hash-chain hit achieving the current best
// match length, kept so ties can be broken by smallest displacement
// (cheapest instruction form) via golang.org/x/exp/slices, per spec
// §4.F "maximizes length - cost" where the spec leaves the exact
// tie-break structure unspecified (see SPEC_FULL.md §3).
type refpackCandidate struct {
	pos    int
	length int
}

// refpackMatcher is the encoder's hash chain: 64K buckets hashing 3-byte
// prefixes, and a 128K-entry link list indexed by position & 0x1FFFF
// (spec §4.F "Encoder uses a hash chain").
type refpackMatcher struct {
	head [refpackHashBuckets]int32
	link [refpackLinkEntries]int32
}

func newRefpackMatcher() *refpackMatcher {
	m := &refpackMatcher{}
	for i := range m.head {
		m.head[i] = -1
	}
	for i := range m.link {
		m.link[i] = -1
	}
	return m
}

func refpackHash(src []byte, p int) uint32 {
	return ((uint32(src[p])<<8 | uint32(src[p+2])) ^ (uint32(src[p+1]) << 4)) & 0xFFFF
}

func (m *refpackMatcher) insert(src []byte, p int) {
	if p+3 > len(src) {
		return
	}
	h := refpackHash(src, p)
	m.link[p&refpackLinkMask] = m.head[h]
	m.head[h] = int32(p)
}

// search finds the longest match ending before p, within the largest
// displacement any instruction form supports, and returns its length
// and the nearest (cheapest) position achieving it.
func (m *refpackMatcher) search(src []byte, p int) (length, matchPos int) {
	if p+3 > len(src) {
		return 0, 0
	}
	h := refpackHash(src, p)
	maxLen := len(src) - p
	if maxLen > refpackMaxMatch4 {
		maxLen = refpackMaxMatch4
	}
	var candidates []refpackCandidate
	best := 0
	cand := m.head[h]
	for depth := 0; cand >= 0 && depth < refpackSearchDepth; depth++ {
		c := int(cand)
		if p-1-c >= refpackMaxDisp4 {
			break
		}
		l := refpackMatchLen(src, c, p, maxLen)
		if l > best {
			best = l
			candidates = candidates[:0]
			candidates = append(candidates, refpackCandidate{pos: c, length: l})
		} else if l == best && l > 0 {
			candidates = append(candidates, refpackCandidate{pos: c, length: l})
		}
		if best >= refpackMaxMatch4 {
			break // "prefer length >= 1028 to terminate the search early"
		}
		cand = m.link[c&refpackLinkMask]
	}
	if len(candidates) == 0 {
		return 0, 0
	}
	slices.SortFunc(candidates, func(a, b refpackCandidate) int { return b.pos - a.pos })
	return best, candidates[0].pos
}

// refpackFormOption describes one of the three match-carrying
// instruction forms' capacity and byte cost.
type refpackFormOption struct {
	form           int
	minLen, maxLen int
	maxDisp        int
	cost           int // instruction bytes, excluding the literal run
}

var refpackFormOptions = [3]refpackFormOption{
	{form: 2, minLen: refpackMinMatch2, maxLen: refpackMaxMatch2, maxDisp: refpackMaxDisp2, cost: 2},
	{form: 3, minLen: refpackMinMatch3, maxLen: refpackMaxMatch3, maxDisp: refpackMaxDisp3, cost: 3},
	{form: 4, minLen: refpackMinMatch4, maxLen: refpackMaxMatch4, maxDisp: refpackMaxDisp4, cost: 4},
}

// refpackForm picks the instruction form maximizing length - cost among
// those whose displacement and length range admit this match (spec
// §4.F "maximizes length - cost"), or ok=false if none do.
func refpackForm(length, disp int) (chosenLen, form int, ok bool) {
	bestScore := -1
	for _, o := range refpackFormOptions {
		if disp >= o.maxDisp || length < o.minLen {
			continue
		}
		l := length
		if l > o.maxLen {
			l = o.maxLen
		}
		if score := l - o.cost; score > bestScore {
			bestScore, chosenLen, form, ok = score, l, o.form, true
		}
	}
	return
}

// refpackEncodePayload runs the main loop: find a match at each
// position, flush pending literals around it, and emit the chosen
// instruction form.
func refpackEncodePayload(src []byte) []byte {
	out := make([]byte, 0, RefpackEncodedSizeUpperBound(len(src))-8)
	matcher := newRefpackMatcher()
	n := len(src)
	literalStart := 0
	p := 0

	// flushLiterals emits standalone literal-block opcodes (each a
	// multiple of 4 bytes, up to refpackLiteralBlockMax) for as much of
	// the pending literal run as divides evenly by 4, always leaving
	// exactly (run length mod 4) bytes behind — the only amount the
	// 2-bit inline literal field on a following instruction can carry.
	flushLiterals := func() {
		toFlush := (p - literalStart) - (p-literalStart)%4
		for toFlush > 0 {
			block := toFlush
			if block > refpackLiteralBlockMax {
				block = refpackLiteralBlockMax
			}
			out = append(out, refpackLiteralOpcodeLo|byte((block-4)>>2))
			out = append(out, src[literalStart:literalStart+block]...)
			literalStart += block
			toFlush -= block
		}
	}

	for p < n {
		length, matchPos := matcher.search(src, p)
		matcher.insert(src, p)
		disp := p - 1 - matchPos
		chosenLen, form, ok := refpackForm(length, disp)
		if !ok {
			p++
			continue
		}

		flushLiterals()
		lit := p - literalStart
		litBytes := src[literalStart:p]
		mlen := chosenLen - minMatchForForm(form)

		switch form {
		case 2:
			out = append(out, byte((lit&0x03)|((mlen&0x07)<<2)|((disp>>3)&0x60)))
			out = append(out, byte(disp))
		case 3:
			out = append(out, byte(0x80|(mlen&0x3F)))
			out = append(out, byte((lit<<6)|((disp>>8)&0x3F)))
			out = append(out, byte(disp))
		case 4:
			out = append(out, byte(0xC0|((disp>>12)&0x10)|((mlen>>6)&0x0C)|(lit&0x03)))
			out = append(out, byte(disp>>8))
			out = append(out, byte(disp))
			out = append(out, byte(mlen))
		}
		out = append(out, litBytes...)

		for i := p + 1; i < p+chosenLen && i+3 <= n; i++ {
			matcher.insert(src, i)
		}
		p += chosenLen
		literalStart = p
	}

	flushLiterals()
	tail := n - literalStart
	out = append(out, refpackEOFOpcodeBase|byte(tail&0x03))
	out = append(out, src[literalStart:n]...)
	return out
}

func minMatchForForm(form int) int {
	switch form {
	case 2:
		return refpackMinMatch2
	case 3:
		return refpackMinMatch3
	default:
		return refpackMinMatch4
	}
}

// RefpackDecode reads a RefPack header and payload from source and
// writes the decompressed bytes into dst, returning the number written
// (spec §6 "refpack_decode").
func RefpackDecode(source io.Reader, dst []byte) (int, error) {
	h, err := readRefpackHeader(source)
	if err != nil {
		return 0, err
	}
	payload, err := io.ReadAll(source)
	if err != nil {
		return 0, fmt.Errorf("refpack: reading payload: %w", ErrTruncated)
	}
	if uint32(len(dst)) < h.uncompressedSize {
		return 0, ErrExcessiveCopy
	}
	return refpackDecodePayload(payload, dst[:h.uncompressedSize])
}

// refpackDecodePayload implements spec §4.F's four instruction forms.
func refpackDecodePayload(payload, dst []byte) (int, error) {
	pos := 0
	out := 0

	copyLiteral := func(n int) error {
		if pos+n > len(payload) {
			return ErrTruncated
		}
		if out+n > len(dst) {
			return ErrExcessiveCopy
		}
		copy(dst[out:], payload[pos:pos+n])
		pos += n
		out += n
		return nil
	}

	copyMatch := func(disp, length int) error {
		if disp < 0 || disp > out-1 {
			return ErrInvalidBackReference
		}
		if out+length > len(dst) {
			return ErrExcessiveCopy
		}
		src := out - 1 - disp
		for i := 0; i < length; i++ {
			dst[out] = dst[src]
			out++
			src++
		}
		return nil
	}

	for {
		if pos >= len(payload) {
			return 0, ErrTruncated
		}
		op := payload[pos]
		pos++

		switch {
		case op < 0x80: // 2-byte form
			if pos+1 > len(payload) {
				return 0, ErrTruncated
			}
			b1 := payload[pos]
			pos++
			lit := int(op & 0x03)
			mlen := int((op>>2)&0x07) + 3
			disp := (int(op&0x60) << 3) | int(b1)
			if err := copyLiteral(lit); err != nil {
				return 0, err
			}
			if err := copyMatch(disp, mlen); err != nil {
				return 0, err
			}

		case op < 0xC0: // 3-byte form
			if pos+2 > len(payload) {
				return 0, ErrTruncated
			}
			b1, b2 := payload[pos], payload[pos+1]
			pos += 2
			lit := int(b1 >> 6)
			mlen := int(op&0x3F) + 4
			disp := (int(b1&0x3F) << 8) | int(b2)
			if err := copyLiteral(lit); err != nil {
				return 0, err
			}
			if err := copyMatch(disp, mlen); err != nil {
				return 0, err
			}

		case op < 0xE0: // 4-byte form
			if pos+3 > len(payload) {
				return 0, ErrTruncated
			}
			b1, b2, b3 := payload[pos], payload[pos+1], payload[pos+2]
			pos += 3
			lit := int(op & 0x03)
			mlen := ((int(op&0x0C) << 6) | int(b3)) + 5
			disp := (int(op&0x10) << 12) | (int(b1) << 8) | int(b2)
			if err := copyLiteral(lit); err != nil {
				return 0, err
			}
			if err := copyMatch(disp, mlen); err != nil {
				return 0, err
			}

		case op < refpackEOFOpcodeBase: // literal-only block, length 4..112
			length := (int(op&0x1F) << 2) + 4
			if err := copyLiteral(length); err != nil {
				return 0, err
			}

		default: // EOF tail: 0..3 trailing literal bytes, ends the stream
			length := int(op & 0x03)
			if err := copyLiteral(length); err != nil {
				return 0, err
			}
			return out, nil
		}
	}
}


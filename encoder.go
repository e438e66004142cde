package lightzhl

// LightZhl encoder: a hash-chained LZ77 matcher with lazy and backward
// match extension, emitting literals and (match-over, displacement)
// pairs through the adaptive Huffman model (huffman.go) and the bit
// writer (bitio.go). Mirrors spec §4.D.

const (
	// minMatchSearch is the "MIN_MATCH=5" threshold the encoder loop uses
	// before attempting a hash lookup — distinct from matchMin (4), which
	// is the minimum total length a *found* match must reach. spec.md
	// uses "MIN_MATCH" for both; two names avoid that ambiguity here.
	minMatchSearch = 5
)

// computeHash5 folds 5 bytes into the encoder's rolling hash via
// update_hash(byte) = rotate_left(hash ^ byte, 5), applied once per byte.
func computeHash5(b []byte) uint32 {
	var h uint32
	for i := 0; i < hashLookahead; i++ {
		h = rotl5(h ^ uint32(b[i]))
	}
	return h
}

func rotl5(x uint32) uint32 { return (x << 5) | (x >> 27) }

// hashBucket scrambles a hash value into a 15-bit bucket index.
func hashBucket(h uint32) uint32 {
	return (h*0x343FD + 0x269EC3) >> 17
}

// matchOverEncode maps a match-over value to its symbol and, for values
// >= 8, the extra-bits field matchOverTable describes.
func matchOverEncode(over uint32) (sym uint16, extraBits uint32, extraVal uint32) {
	if over < 8 {
		return matchSymBase + uint16(over), 0, 0
	}
	for i := len(matchOverTable) - 1; i >= 0; i-- {
		e := matchOverTable[i]
		if over >= e.base {
			return matchSymBase + 8 + uint16(i), e.extraBits, over - e.base
		}
	}
	e := matchOverTable[0]
	return matchSymBase + 8, e.extraBits, over - e.base
}

// displacementEncode maps a 16-bit displacement to its 3-bit prefix and
// the (extraBits+9)-bit field that follows it.
func displacementEncode(d uint32) (prefix uint32, bits uint32, val uint32) {
	top7 := d >> 9
	for i := len(displayPrefixTable) - 1; i >= 0; i-- {
		e := displayPrefixTable[i]
		if top7 >= e.baseTop {
			return uint32(i), e.extraBits + 9, ((top7 - e.baseTop) << 9) | (d & 0x1FF)
		}
	}
	e := displayPrefixTable[0]
	return 0, e.extraBits + 9, ((top7 - e.baseTop) << 9) | (d & 0x1FF)
}

// rawMatchLength compares src[priorPos:] against src[curPos:] directly,
// up to limit bytes. Because the whole input is resident in memory,
// this handles the self-overlapping case (curPos-priorPos < matched
// length) correctly without any special-casing: by the time the loop
// reads src[priorPos+n] for n >= distance, that index equals
// src[curPos+n-distance], a byte the loop has already verified matches.
func rawMatchLength(src []byte, priorPos, curPos, limit int) int {
	n := 0
	for n < limit && curPos+n < len(src) {
		if src[priorPos+n] != src[curPos+n] {
			break
		}
		n++
	}
	return n
}

// matchAttempt is the outcome of one hash-chain lookup, including any
// backward extension applied.
type matchAttempt struct {
	ok       bool
	length   int
	priorPos int
	rawCount int // rawCount after backward extension (<= the rawCount passed in)
	extended bool
}

// lzEncoder holds the LightZhl encoder's per-call state: the Huffman
// model, the bit writer, the ring buffer mirroring consumed input, and
// the one-entry-per-bucket hash chain.
type lzEncoder struct {
	huff      *huffmanEncoder
	w         *bitWriter
	ring      ringBuffer
	hashTable [hashBuckets]int32

	// matchesEmitted and longestMatch are observed by tests only (spec
	// §8's overlap-extension and scenario-2 boundary properties are
	// about a match actually being found, not merely about round-trip
	// surviving one); production code never reads them.
	matchesEmitted int
	longestMatch   int
}

func newLZEncoder(dst []byte) *lzEncoder {
	e := &lzEncoder{huff: newHuffmanEncoder(), w: newBitWriter(dst)}
	for i := range e.hashTable {
		e.hashTable[i] = -1
	}
	return e
}

// insertHash computes the hash at p, inserts p as that bucket's latest
// position, and returns the bucket's previous occupant (or -1).
func (e *lzEncoder) insertHash(src []byte, p int) int32 {
	if p+hashLookahead > len(src) {
		return -1
	}
	h := computeHash5(src[p:])
	b := hashBucket(h)
	prior := e.hashTable[b]
	e.hashTable[b] = int32(p)
	return prior
}

// reseedHashAfterBackExtend re-indexes the (possibly shifted) match
// start so a later lookup of this 5-byte prefix finds the extended
// position rather than the one recorded before extension. Called from
// the single point tryMatch applies backward extension, per the
// resolution recorded in SPEC_FULL.md §13.
func (e *lzEncoder) reseedHashAfterBackExtend(src []byte, matchStart int) {
	if matchStart+hashLookahead > len(src) {
		return
	}
	h := computeHash5(src[matchStart:])
	e.hashTable[hashBucket(h)] = int32(matchStart)
}

// probeMatch is used only where ring.pos is known to equal curPos (the
// first, non-lazy check at a freshly scanned position): it walks
// recorded ring history up to distance bytes (ring contents at or past
// the write head are stale, not yet-written data) and, if the match
// runs the entire distance, continues the comparison directly against
// src for the self-overlapping tail, up to the overall budget.
func (e *lzEncoder) probeMatch(src []byte, curPos, priorPos, distance, overallLimit int) int {
	ringLimit := distance
	if overallLimit < ringLimit {
		ringLimit = overallLimit
	}
	n := e.ring.matchLength(uint32(priorPos), src[curPos:], ringLimit)
	if n == distance && n < overallLimit {
		n += rawMatchLength(src, priorPos+n, curPos+n, overallLimit-n)
	}
	return n
}

// tryMatch looks up the hash chain at cur, measures the match, and
// attempts backward extension into the rawCount bytes preceding it.
// ringSynced must be true only when e.ring.pos == cur (the primary scan
// position, not a lazy-lookahead peek, whose ring state still lags).
func (e *lzEncoder) tryMatch(src []byte, pos, cur, rawCount int, ringSynced bool) matchAttempt {
	prior := e.insertHash(src, cur)
	if prior < 0 || int(prior) == cur {
		return matchAttempt{}
	}
	priorPos := int(prior)
	distance := cur - priorPos
	if distance <= 0 || distance >= ringSize {
		return matchAttempt{}
	}

	overallLimit := len(src) - cur
	if mm := matchMin + matchMaxOver; mm < overallLimit {
		overallLimit = mm
	}

	var length int
	if ringSynced {
		length = e.probeMatch(src, cur, priorPos, distance, overallLimit)
	} else {
		length = rawMatchLength(src, priorPos, cur, overallLimit)
	}
	if length < matchMin {
		return matchAttempt{}
	}

	// maxBack additionally cannot reach before the start of the buffer
	// (priorPos) and cannot push the total match past the 521-byte cap
	// matchOverEncode's table covers.
	maxBack := rawCount
	if d := distance - length; d < maxBack {
		maxBack = d
	}
	if b := ringSize - distance; b < maxBack {
		maxBack = b
	}
	if priorPos < maxBack {
		maxBack = priorPos
	}
	if capBack := (matchMin + matchMaxOver) - length; capBack < maxBack {
		maxBack = capBack
	}
	if maxBack < 0 {
		maxBack = 0
	}
	back := 0
	for back < maxBack && src[pos+rawCount-back-1] == src[priorPos-back-1] {
		back++
	}
	if back > 0 {
		newPrior := priorPos - back
		e.reseedHashAfterBackExtend(src, newPrior)
		return matchAttempt{ok: true, length: length + back, priorPos: newPrior, rawCount: rawCount - back, extended: true}
	}
	return matchAttempt{ok: true, length: length, priorPos: priorPos, rawCount: rawCount}
}

// nextChunk scans forward from pos, appending literal bytes into the
// ring as it goes, and returns either a raw run with no match
// (matchLen == 0) or the raw-run length followed by a match, applying
// one level of lazy lookahead per spec §4.D.
func (e *lzEncoder) nextChunk(src []byte, pos int) (rawCount, matchLen, priorPos int) {
	for {
		cur := pos + rawCount
		if len(src)-cur < minMatchSearch || rawCount >= maxRawRun {
			return rawCount, 0, 0
		}

		attempt := e.tryMatch(src, pos, cur, rawCount, true)
		if !attempt.ok {
			e.ring.appendByte(src[cur])
			rawCount++
			continue
		}
		if attempt.extended {
			return attempt.rawCount, attempt.length, attempt.priorPos
		}

		curRawCount, curLen, curPrior := attempt.rawCount, attempt.length, attempt.priorPos
		for {
			peekCur := pos + curRawCount + 1
			if len(src)-peekCur < minMatchSearch || curRawCount+1 >= maxRawRun {
				break
			}
			peek := e.tryMatch(src, pos, peekCur, curRawCount+1, false)
			if !peek.ok || peek.length <= curLen {
				break
			}
			e.ring.appendByte(src[pos+curRawCount])
			curRawCount, curLen, curPrior = peek.rawCount, peek.length, peek.priorPos
			if peek.extended {
				break
			}
		}
		return curRawCount, curLen, curPrior
	}
}

func (e *lzEncoder) emitLiteralSymbols(run []byte) error {
	for _, b := range run {
		if err := e.huff.putSymbol(e.w, uint16(b)); err != nil {
			return err
		}
	}
	return nil
}

// emitMatch writes a match-over symbol (plus extra bits) followed by
// the displacement's 3-bit prefix and remaining bits, per spec §4.D
// "Emitting a match".
func (e *lzEncoder) emitMatch(over uint32, displacement uint32) error {
	sym, extraBits, extraVal := matchOverEncode(over)
	if err := e.huff.putSymbol(e.w, sym); err != nil {
		return err
	}
	if extraBits > 0 {
		if err := e.w.putBits(extraBits, extraVal); err != nil {
			return err
		}
	}
	prefix, bits, val := displacementEncode(displacement)
	if err := e.w.putBits(3, prefix); err != nil {
		return err
	}
	return e.w.putBitsWide(bits, val)
}

// encode runs the main loop and returns the number of bytes written.
func (e *lzEncoder) encode(src []byte) (int, error) {
	n := len(src)
	pos := 0
	for pos < n {
		if n-pos < minMatchSearch {
			if err := e.emitLiteralSymbols(src[pos:]); err != nil {
				return 0, err
			}
			pos = n
			break
		}

		rawCount, matchLen, priorPos := e.nextChunk(src, pos)
		if err := e.emitLiteralSymbols(src[pos : pos+rawCount]); err != nil {
			return 0, err
		}
		cur := pos + rawCount
		if matchLen == 0 {
			pos = cur
			continue
		}

		distance := cur - priorPos
		// Backward extension may have pulled bytes the ring already holds
		// as raw literals into the match; append only what it lacks.
		e.ring.append(src[int(e.ring.pos) : cur+matchLen])
		if err := e.emitMatch(uint32(matchLen-matchMin), uint32(distance)); err != nil {
			return 0, err
		}
		e.matchesEmitted++
		if matchLen > e.longestMatch {
			e.longestMatch = matchLen
		}
		pos = cur + matchLen
	}

	if err := e.huff.putSymbol(e.w, symEOS); err != nil {
		return 0, err
	}
	if err := e.w.flushEOS(); err != nil {
		return 0, err
	}
	return e.w.written(), nil
}

package lightzhl

// Ring buffer: the 64 KiB sliding-window history shared by the LightZhl
// matcher, the emitter, and the decoder's back-reference copy. Owned
// exclusively by a single codec instance; see spec §3 "Lifecycles".

const (
	ringSize = 1 << 16 // 65536 bytes, spec §3 "Buffer is 2^16 bytes"
	ringMask = ringSize - 1
)

// ringBuffer is a fixed 65536-byte circular buffer with a monotonically
// growing write position. Only pos&ringMask is ever observable in the
// wire format (spec §3 invariant 3).
type ringBuffer struct {
	buf [ringSize]byte
	pos uint32
}

// appendByte writes b at the current position and advances it by one.
func (r *ringBuffer) appendByte(b byte) {
	r.buf[r.pos&ringMask] = b
	r.pos++
}

// append writes s starting at the current position, splitting the copy
// at the wrap boundary when necessary, and advances the position by
// len(s).
func (r *ringBuffer) append(s []byte) {
	if len(s) == 0 {
		return
	}
	start := r.pos & ringMask
	spaceToEnd := ringSize - int(start)
	if len(s) <= spaceToEnd {
		copy(r.buf[start:], s)
	} else {
		copy(r.buf[start:], s[:spaceToEnd])
		copy(r.buf[:], s[spaceToEnd:])
	}
	r.pos += uint32(len(s))
}

// byteAt returns the byte stored at ring position p (wrap-aware).
func (r *ringBuffer) byteAt(p uint32) byte { return r.buf[p&ringMask] }

// matchLength compares up to limit bytes starting at ring position
// histPos against src, returning the length of the matching prefix.
// limit must be <= ringSize.
func (r *ringBuffer) matchLength(histPos uint32, src []byte, limit int) int {
	n := 0
	for n < limit && n < len(src) {
		if r.buf[(histPos+uint32(n))&ringMask] != src[n] {
			break
		}
		n++
	}
	return n
}

// copyBackReference emits length bytes read from displacement bytes
// behind the current write position into both out[:length] and the ring
// buffer itself, advancing the position by length. Overlapping copies
// (length > displacement) self-extend correctly because the source
// cursor walks forward through bytes this same call has just written,
// one byte at a time — there is no bulk-copy shortcut here precisely
// because overlap must observe freshly written bytes.
func (r *ringBuffer) copyBackReference(displacement uint32, length int, out []byte) {
	srcPos := r.pos - displacement
	for i := 0; i < length; i++ {
		b := r.buf[srcPos&ringMask]
		out[i] = b
		r.buf[r.pos&ringMask] = b
		r.pos++
		srcPos++
	}
}

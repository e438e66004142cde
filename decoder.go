package lightzhl

// LightZhl decoder: the inverse of encoder.go, reading symbols through
// the Huffman model (huffman.go) and reconstructing output via the ring
// buffer's back-reference copy (ring.go). Mirrors spec §4.E.

// decodeMatchOver reconstructs a match-over value from a decoded
// 256..271 symbol, per spec §4.E step 5.
func decodeMatchOver(r *bitReader, sym uint16) (uint32, error) {
	rel := sym - matchSymBase
	if rel < 8 {
		return uint32(rel), nil
	}
	entry := matchOverTable[rel-8]
	extra, err := r.getBits(entry.extraBits)
	if err != nil {
		return 0, err
	}
	return entry.base + extra, nil
}

// decodeDisplacement reads the 3-bit prefix and the trailing field it
// selects, reassembling the 16-bit displacement.
func decodeDisplacement(r *bitReader) (uint32, error) {
	prefix, err := r.getBits(3)
	if err != nil {
		return 0, err
	}
	entry := displayPrefixTable[prefix]
	val, err := r.getBitsWide(entry.extraBits + 9)
	if err != nil {
		return 0, err
	}
	return (entry.baseTop << 9) | val, nil
}

// lzDecoder holds the LightZhl decoder's per-call state.
type lzDecoder struct {
	huff *huffmanDecoder
	r    *bitReader
	ring ringBuffer
}

func newLZDecoder(src []byte) *lzDecoder {
	return &lzDecoder{huff: newHuffmanDecoder(), r: newBitReader(src)}
}

// decode runs the decoder's state machine to completion, writing
// decompressed output into dst. It returns the number of input bytes
// consumed and output bytes written, or an error from spec §7's set.
func (d *lzDecoder) decode(dst []byte) (consumed, written int, err error) {
	out := 0
	for {
		sym, err := d.huff.readSymbol(d.r)
		if err != nil {
			return 0, 0, err
		}
		if err := d.huff.accountSymbol(d.r, sym); err != nil {
			return 0, 0, err
		}

		switch {
		case sym < matchSymBase:
			if out >= len(dst) {
				return 0, 0, ErrExcessiveCopy
			}
			dst[out] = byte(sym)
			out++
			d.ring.appendByte(byte(sym))

		case sym == symRecalc:
			// handled entirely inside accountSymbol.

		case sym == symEOS:
			return d.r.consumed(), out, nil

		default:
			over, err := decodeMatchOver(d.r, sym)
			if err != nil {
				return 0, 0, err
			}
			displacement, err := decodeDisplacement(d.r)
			if err != nil {
				return 0, 0, err
			}
			if displacement >= ringSize || displacement > d.ring.pos {
				return 0, 0, ErrInvalidBackReference
			}
			length := int(over) + matchMin
			if out+length > len(dst) {
				return 0, 0, ErrExcessiveCopy
			}
			d.ring.copyBackReference(displacement, length, dst[out:out+length])
			out += length
		}
	}
}

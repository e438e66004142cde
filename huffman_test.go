package lightzhl

import "testing"

func TestHuffmanRoundtripNoRegroup(t *testing.T) {
	enc := newHuffmanEncoder()
	dec := newHuffmanDecoder()

	symbols := []uint16{'h', 'e', 'l', 'l', 'o', matchSymBase, matchSymBase + 15, 'z', symEOS}

	dst := make([]byte, 256)
	w := newBitWriter(dst)
	for _, s := range symbols {
		if err := enc.putSymbol(w, s); err != nil {
			t.Fatalf("putSymbol(%d): %v", s, err)
		}
	}
	if err := w.flushEOS(); err != nil {
		t.Fatalf("flushEOS: %v", err)
	}

	r := newBitReader(dst[:w.written()])
	for _, want := range symbols {
		got, err := dec.readSymbol(r)
		if err != nil {
			t.Fatalf("readSymbol: %v", err)
		}
		if got != want {
			t.Fatalf("readSymbol = %d, want %d", got, want)
		}
		if err := dec.accountSymbol(r, got); err != nil {
			t.Fatalf("accountSymbol: %v", err)
		}
	}
}

func TestHuffmanRoundtripForcedRegroup(t *testing.T) {
	enc := newHuffmanEncoder()
	dec := newHuffmanDecoder()

	// Bias the frequency histogram before the forced regroup so the
	// resulting layout isn't simply the initial one reinstalled.
	var symbols []uint16
	for i := 0; i < 50; i++ {
		symbols = append(symbols, 'e')
	}
	for i := 0; i < 20; i++ {
		symbols = append(symbols, matchSymBase+3)
	}
	symbols = append(symbols, 'x', 'y', 'z', symEOS)

	dst := make([]byte, 4096)
	w := newBitWriter(dst)
	for i, s := range symbols {
		if i == len(symbols)-4 {
			// force the countdown to fire on the next emitted symbol.
			enc.nextRecalc = 1
		}
		if err := enc.putSymbol(w, s); err != nil {
			t.Fatalf("putSymbol(%d): %v", s, err)
		}
	}
	if err := w.flushEOS(); err != nil {
		t.Fatalf("flushEOS: %v", err)
	}

	r := newBitReader(dst[:w.written()])
	for i, want := range symbols {
		if i == len(symbols)-4 {
			// the encoder's countdown fired here, so the stream carries
			// sentinel 272 and the group-width deltas ahead of this symbol.
			sentinel, err := dec.readSymbol(r)
			if err != nil {
				t.Fatalf("readSymbol (sentinel) at %d: %v", i, err)
			}
			if sentinel != symRecalc {
				t.Fatalf("readSymbol at %d = %d, want sentinel %d", i, sentinel, symRecalc)
			}
			if err := dec.accountSymbol(r, sentinel); err != nil {
				t.Fatalf("accountSymbol (sentinel) at %d: %v", i, err)
			}
		}
		got, err := dec.readSymbol(r)
		if err != nil {
			t.Fatalf("readSymbol at %d: %v", i, err)
		}
		if err := dec.accountSymbol(r, got); err != nil {
			t.Fatalf("accountSymbol at %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("readSymbol at %d = %d, want %d", i, got, want)
		}
	}

	if dec.freq != enc.freq {
		t.Fatalf("encoder/decoder freq diverged after regroup")
	}
	if dec.table != enc.tableSnapshot() {
		t.Fatalf("encoder/decoder symbol permutation diverged after regroup")
	}
}

// TestEncoderDecoderStateStaysInSync drives a full encode/decode pass
// over a multi-megabyte corpus (forcing many regrouping events) and
// checks the encoder's and decoder's Huffman model state is
// byte-for-byte identical afterward, per spec §3 invariant 2.
func TestEncoderDecoderStateStaysInSync(t *testing.T) {
	phrase := []byte("The quick brown fox jumps over the lazy dog. ")
	var src []byte
	for len(src) < 3<<20 {
		src = append(src, phrase...)
	}

	dst := make([]byte, MaxCompressedSizeLightZhl(len(src)))
	enc := newLZEncoder(dst)
	n, err := enc.encode(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out := make([]byte, len(src))
	dec := newLZDecoder(dst[:n])
	_, written, err := dec.decode(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if written != len(src) || string(out) != string(src) {
		t.Fatalf("roundtrip mismatch over %d-byte corpus", len(src))
	}

	if enc.huff.freq != dec.huff.freq {
		t.Fatalf("encoder/decoder freq diverged after multi-regroup corpus")
	}
	if enc.huff.tableSnapshot() != dec.huff.table {
		t.Fatalf("encoder/decoder symbol permutation diverged after multi-regroup corpus")
	}
}

func TestComputeRegroupWidthsSpanValid(t *testing.T) {
	var freq [numSymbols]uint16
	for i := range freq {
		freq[i] = uint16((i*37 + 1) % 500)
	}
	order := halveAndSortByFreq(&freq)
	widths := computeRegroupWidths(&freq, order)
	if !groupSpanValid(widths) {
		var total int
		for _, wd := range widths {
			total += 1 << wd
		}
		t.Fatalf("groupSpanValid false, total span = %d", total)
	}
}

func TestHalveAndSortByFreqOrdersDescending(t *testing.T) {
	var freq [numSymbols]uint16
	freq[10] = 100
	freq[20] = 50
	freq[30] = 50
	order := halveAndSortByFreq(&freq)
	if order[0] != 10 {
		t.Fatalf("highest-frequency symbol not first: order[0] = %d", order[0])
	}
	// symbols 20 and 30 tie post-halve; descending-ID tiebreak puts 30 first.
	if order[1] != 30 || order[2] != 20 {
		t.Fatalf("tie-break not descending-ID: order[1..2] = %d,%d", order[1], order[2])
	}
}

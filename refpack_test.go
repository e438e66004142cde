package lightzhl

import (
	"bytes"
	"testing"
)

func roundtripRefpack(t *testing.T, src []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := RefpackEncode(src, &buf); err != nil {
		t.Fatalf("RefpackEncode: %v", err)
	}
	encoded := buf.Bytes()

	size, err := RefpackUncompressedSize(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("RefpackUncompressedSize: %v", err)
	}
	if int(size) != len(src) {
		t.Fatalf("RefpackUncompressedSize = %d, want %d", size, len(src))
	}

	out := make([]byte, len(src))
	written, err := RefpackDecode(bytes.NewReader(encoded), out)
	if err != nil {
		t.Fatalf("RefpackDecode: %v", err)
	}
	if written != len(src) {
		t.Fatalf("written = %d, want %d", written, len(src))
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("roundtrip mismatch: got %q, want %q", out, src)
	}
	return encoded
}

func TestRefpackEmptyInput(t *testing.T) {
	encoded := roundtripRefpack(t, nil)
	if len(encoded) < 6 {
		t.Fatalf("expected the 5-byte header plus an EOF opcode, got %d bytes", len(encoded))
	}
}

func TestRefpackShortLiteralOnly(t *testing.T) {
	for n := 1; n <= 4; n++ {
		src := bytes.Repeat([]byte{'Q'}, n)
		roundtripRefpack(t, src)
	}
}

func TestRefpackRepeatedByte(t *testing.T) {
	roundtripRefpack(t, bytes.Repeat([]byte{'Z'}, 1<<16))
}

func TestRefpackMixedContent(t *testing.T) {
	var src []byte
	for i := 0; i < 2000; i++ {
		src = append(src, byte(i%251))
	}
	src = append(src, bytes.Repeat([]byte("abcdefgh"), 500)...)
	roundtripRefpack(t, src)
}

func TestRefpackLargeDisplacement(t *testing.T) {
	prefix := bytes.Repeat([]byte{'x'}, 40000)
	src := append(append([]byte{}, prefix...), []byte("needle-pattern-0123456789")...)
	src = append(src, bytes.Repeat([]byte{'y'}, 50000)...)
	src = append(src, []byte("needle-pattern-0123456789")...)
	roundtripRefpack(t, src)
}

func TestRefpackEncodedSizeUpperBound(t *testing.T) {
	for _, n := range []int{0, 1, 112, 113, 10000} {
		src := bytes.Repeat([]byte{'a', 'b'}, n/2+1)[:n]
		encoded := roundtripRefpack(t, src)
		if got, max := len(encoded), RefpackEncodedSizeUpperBound(n); got > max {
			t.Fatalf("encoded size %d exceeds bound %d for n=%d", got, max, n)
		}
	}
}

func TestRefpackUncompressedSizeWithoutDecoding(t *testing.T) {
	src := []byte("hello world, hello world, hello world")
	var buf bytes.Buffer
	if _, err := RefpackEncode(src, &buf); err != nil {
		t.Fatalf("RefpackEncode: %v", err)
	}
	// Only the header should be consumed; verify the payload isn't
	// required to compute the size.
	header := buf.Bytes()[:5]
	size, err := RefpackUncompressedSize(bytes.NewReader(header))
	if err != nil {
		t.Fatalf("RefpackUncompressedSize: %v", err)
	}
	if int(size) != len(src) {
		t.Fatalf("size = %d, want %d", size, len(src))
	}
}

func TestRefpackHeaderMismatch(t *testing.T) {
	_, err := RefpackUncompressedSize(bytes.NewReader([]byte{0x00, 0x00, 0, 0, 0}))
	if err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestRefpackLargeMagic(t *testing.T) {
	src := bytes.Repeat([]byte{'m'}, 0x01000010)
	var buf bytes.Buffer
	if _, err := RefpackEncode(src, &buf); err != nil {
		t.Fatalf("RefpackEncode: %v", err)
	}
	encoded := buf.Bytes()
	if encoded[0] != 0x90 {
		t.Fatalf("expected large magic 0x90, got %#x", encoded[0])
	}
	out := make([]byte, len(src))
	written, err := RefpackDecode(bytes.NewReader(encoded), out)
	if err != nil {
		t.Fatalf("RefpackDecode: %v", err)
	}
	if written != len(src) || !bytes.Equal(out, src) {
		t.Fatalf("large-input roundtrip mismatch")
	}
}

func FuzzRefpackRoundtrip(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("a"))
	f.Add([]byte("AAAAAAAAAAAAAAAAAAAA"))
	f.Add(bytes.Repeat([]byte("hello world "), 200))
	f.Fuzz(func(t *testing.T, src []byte) {
		if len(src) > 1<<20 {
			t.Skip("bounded to spec's 1 MiB round-trip property")
		}
		var buf bytes.Buffer
		if _, err := RefpackEncode(src, &buf); err != nil {
			t.Fatalf("RefpackEncode: %v", err)
		}
		out := make([]byte, len(src))
		written, err := RefpackDecode(bytes.NewReader(buf.Bytes()), out)
		if err != nil {
			t.Fatalf("RefpackDecode: %v", err)
		}
		if written != len(src) || !bytes.Equal(out, src) {
			t.Fatalf("roundtrip mismatch for input of length %d", len(src))
		}
	})
}

func FuzzRefpackDecoderNeverPanics(f *testing.F) {
	f.Add([]byte{0x10, 0xFB, 0, 0, 0})
	f.Add([]byte{0x90, 0xFB, 0xFF, 0xFF, 0xFF, 0xFF})
	f.Fuzz(func(t *testing.T, garbage []byte) {
		out := make([]byte, 4096)
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("decoder panicked on adversarial input: %v", r)
			}
		}()
		_, _ = RefpackDecode(bytes.NewReader(garbage), out)
	})
}

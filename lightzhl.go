package lightzhl

// Package-level entry points for the LightZhl codec (spec §6 "Codec
// API"). Both functions operate on whole, caller-owned buffers: no
// state survives a single call, matching spec §5's per-call lifecycle.

// CompressLightZhl encodes src into dst, returning the number of bytes
// written. dst must be at least MaxCompressedSizeLightZhl(len(src))
// bytes; a smaller buffer may fail with ErrOutputOverflow even for
// compressible input.
func CompressLightZhl(src, dst []byte) (int, error) {
	enc := newLZEncoder(dst)
	return enc.encode(src)
}

// DecompressLightZhl decodes src into dst, returning the number of
// input bytes consumed and output bytes written.
func DecompressLightZhl(src, dst []byte) (consumed, written int, err error) {
	dec := newLZDecoder(src)
	return dec.decode(dst)
}

// MaxCompressedSizeLightZhl returns the worst-case compressed size for
// an input of length raw, per spec §6.
func MaxCompressedSizeLightZhl(raw int) int {
	return raw + raw/2 + 32
}

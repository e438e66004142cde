// Package lightzhl implements the core compression engine of a small
// multi-format archive library: an adaptive-Huffman LZ77 codec
// ("LightZhl"), a simpler fixed-instruction LZ77 codec ("RefPack"), and a
// thin framed container that dispatches between them and a real DEFLATE
// pass-through.
//
// # Overview
//
// LightZhl combines a hash-chained LZ77 matcher with an adaptive Huffman
// coder whose symbol codes are periodically regrouped from observed
// frequencies. Unlike a trained symbol table, there is no corpus and no
// serialized model: encoder and decoder bootstrap from the same fixed
// initial code assignment and adapt in lock-step as bytes flow through.
//
// RefPack is a byte-aligned LZ77 format with three fixed instruction
// encodings plus a literal-run opcode. It compresses less well than
// LightZhl but decodes faster and carries no adaptive state.
//
// Both codecs consume and produce whole buffers: they are not streaming,
// not seekable, and a single codec instance is not safe for concurrent
// use. Two independent instances over disjoint buffers may run in
// parallel without coordination.
//
// # When to use which codec
//
// LightZhl generally compresses better on text-like data thanks to its
// adaptive Huffman stage; RefPack is simpler and cheaper to decode and is
// preferred when many small buffers must be decompressed quickly.
//
// # Basic usage
//
//	dst := make([]byte, MaxCompressedSizeLightZhl(len(src)))
//	n, err := CompressLightZhl(src, dst)
//	if err != nil {
//	    // handle
//	}
//	compressed := dst[:n]
//
//	out := make([]byte, len(src))
//	_, written, err := DecompressLightZhl(compressed, out)
//
// # Framed container
//
// WriteFramed/ReadFramed wrap a codec's payload with an 8-byte header (a
// 4-byte ASCII tag plus a little-endian uncompressed length) so a reader
// can select the right codec, including a real zlib pass-through for the
// "ZL1\0".."ZL9\0" tags.
//
// # Performance characteristics
//
// LightZhl: encode throughput is dominated by the one-entry-per-hash
// matcher and lazy matching; decode throughput is dominated by Huffman
// bit unpacking and ring-buffer copies. RefPack: both directions are
// byte-aligned and branch-light, typically faster than LightZhl at a
// worse compression ratio.
package lightzhl

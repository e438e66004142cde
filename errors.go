package lightzhl

import "errors"

// Sentinel errors for the codec failure kinds. Callers should match with
// errors.Is; wrapped instances add positional context via fmt.Errorf.
var (
	// ErrOutputOverflow is returned when the LightZhl bit writer would
	// exceed its destination buffer.
	ErrOutputOverflow = errors.New("lightzhl: output buffer overflow")

	// ErrTruncated is returned when a reader needs more bits or bytes
	// than the input provides.
	ErrTruncated = errors.New("lightzhl: truncated input")

	// ErrInvalidSymbol is returned when the decoder computes a
	// permutation index at or beyond the 274-symbol alphabet.
	ErrInvalidSymbol = errors.New("lightzhl: invalid symbol")

	// ErrInvalidGroupLayout is returned when a regrouping parse yields a
	// group layout whose total span falls outside the valid range.
	ErrInvalidGroupLayout = errors.New("lightzhl: invalid huffman group layout")

	// ErrInvalidBackReference is returned when a decoded displacement or
	// RefPack reference index points outside the valid window.
	ErrInvalidBackReference = errors.New("lightzhl: invalid back-reference")

	// ErrExcessiveCopy is returned when a back-reference or literal copy
	// would write past the declared output length.
	ErrExcessiveCopy = errors.New("lightzhl: copy exceeds output length")

	// ErrHeaderMismatch is returned by WriteFramed for a tag that names
	// no known codec, and by the RefPack reader for an unrecognized magic.
	// ReadFramed does not return it: input with an unknown tag is passed
	// through as uncompressed.
	ErrHeaderMismatch = errors.New("lightzhl: unrecognized container tag")

	// ErrCodecNotImplemented is returned by the framed container for
	// tags that are recognized but whose codec is out of scope (the
	// BinaryTree and Huffman-with-runlength siblings).
	ErrCodecNotImplemented = errors.New("lightzhl: codec not implemented")
)

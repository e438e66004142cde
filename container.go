package lightzhl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zlib"
)

// Framed container: an 8-byte header (4-byte ASCII tag + little-endian
// uncompressed length) over LightZhl, RefPack, and a real zlib
// pass-through, plus two sibling tags this module recognizes but cannot
// encode or decode (spec §4.G, §6 "Framed container format").

// Container tags, byte-compared exactly on read (spec §4.G).
const (
	TagLightZhl   = "NOX\x00"
	TagRefPack    = "EAR\x00"
	TagBinaryTree = "EAB\x00" // recognized, not implemented; see DESIGN.md
	TagHuffmanRLE = "EAH\x00" // recognized, not implemented; see DESIGN.md
)

// TagZlib returns the container tag for zlib compression level
// 1 ("ZL1\x00") through 9 ("ZL9\x00"), per spec §4.G.
func TagZlib(level int) (string, error) {
	if level < 1 || level > 9 {
		return "", fmt.Errorf("lightzhl: zlib level %d out of range 1..9", level)
	}
	return fmt.Sprintf("ZL%d\x00", level), nil
}

// zlibLevelForTag reports the zlib level a "ZL1\x00".."ZL9\x00" tag
// names, or ok=false for any other tag.
func zlibLevelForTag(tag string) (level int, ok bool) {
	if len(tag) != 4 || tag[0] != 'Z' || tag[1] != 'L' || tag[3] != 0 {
		return 0, false
	}
	if tag[2] < '1' || tag[2] > '9' {
		return 0, false
	}
	return int(tag[2] - '0'), true
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func orDiscardLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return discardLogger()
}

// WriteFramed encodes src with the codec named by tag and appends an
// 8-byte header plus the resulting payload to dst, returning the
// extended slice. logger is optional (nil uses a discard logger) and is
// only ever consulted for tag-dispatch diagnostics, never by the codecs
// themselves (spec §5's core loops perform no I/O or logging).
func WriteFramed(dst []byte, tag string, src []byte, logger *slog.Logger) ([]byte, error) {
	if len(tag) != 4 {
		return nil, fmt.Errorf("lightzhl: container tag must be 4 bytes, got %q", tag)
	}
	logger = orDiscardLogger(logger)

	payload, err := encodeFramedPayload(tag, src, logger)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 8)
	copy(header[:4], tag)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(src)))

	out := append(dst, header...)
	out = append(out, payload...)
	return out, nil
}

func encodeFramedPayload(tag string, src []byte, logger *slog.Logger) ([]byte, error) {
	switch tag {
	case TagLightZhl:
		buf := make([]byte, MaxCompressedSizeLightZhl(len(src)))
		n, err := CompressLightZhl(src, buf)
		if err != nil {
			return nil, err
		}
		logger.Debug("framed container: encoded lightzhl payload", "bytes", n)
		return buf[:n], nil

	case TagRefPack:
		var buf bytes.Buffer
		if _, err := RefpackEncode(src, &buf); err != nil {
			return nil, err
		}
		logger.Debug("framed container: encoded refpack payload", "bytes", buf.Len())
		return buf.Bytes(), nil

	case TagBinaryTree, TagHuffmanRLE:
		return nil, fmt.Errorf("%w: %s", ErrCodecNotImplemented, tag)
	}

	if level, ok := zlibLevelForTag(tag); ok {
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(src); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		logger.Debug("framed container: encoded zlib payload", "level", level, "bytes", buf.Len())
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrHeaderMismatch, tag)
}

// ReadFramed parses an 8-byte container header from src and decodes the
// payload through the tag's codec. A tag that matches none of the known
// forms causes the entire input to be treated as uncompressed data,
// exactly as spec §4.G's read side specifies; the same applies when src
// is too short to even hold a header.
func ReadFramed(src []byte, logger *slog.Logger) ([]byte, error) {
	logger = orDiscardLogger(logger)

	if len(src) < 8 {
		logger.Debug("framed container: input shorter than header, treating as uncompressed", "len", len(src))
		return append([]byte(nil), src...), nil
	}

	tag := string(src[:4])
	length := binary.LittleEndian.Uint32(src[4:8])
	payload := src[8:]

	switch tag {
	case TagLightZhl:
		out := make([]byte, length)
		_, written, err := DecompressLightZhl(payload, out)
		if err != nil {
			return nil, err
		}
		return out[:written], nil

	case TagRefPack:
		out := make([]byte, length)
		written, err := RefpackDecode(bytes.NewReader(payload), out)
		if err != nil {
			return nil, err
		}
		return out[:written], nil

	case TagBinaryTree, TagHuffmanRLE:
		return nil, fmt.Errorf("%w: %s", ErrCodecNotImplemented, tag)
	}

	if level, ok := zlibLevelForTag(tag); ok {
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("lightzhl: zlib level %d header: %w", level, err)
		}
		defer zr.Close()
		out := make([]byte, length)
		n, err := io.ReadFull(zr, out)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, err
		}
		logger.Debug("framed container: decoded zlib payload", "level", level, "bytes", n)
		return out[:n], nil
	}

	logger.Debug("framed container: unrecognized tag, treating entire stream as uncompressed", "tag", tag)
	return append([]byte(nil), src...), nil
}

// FramedUncompressedSize reads only the 8-byte container header and
// returns its declared uncompressed length, without touching the
// payload. Supplemented per SPEC_FULL.md §11: spec.md gives this
// operation for RefPack's own header (RefpackUncompressedSize) but not
// for the one place LightZhl's length is actually recorded.
func FramedUncompressedSize(src []byte) (uint32, error) {
	if len(src) < 8 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(src[4:8]), nil
}

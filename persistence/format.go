// Package persistence implements the self-describing binary envelope for
// connectivity snapshots: a fixed header identifying format version, codec
// and compression, followed by a checksummed payload.
package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies htmgo snapshot files (ASCII: "HTM0").
	MagicNumber = 0x48544D30
	// Version is the current envelope format version (v1.0.0).
	Version = 0x00010000

	// maxCodecNameLen bounds the codec name field in the header.
	maxCodecNameLen = 255
)

// Compression identifies the payload compression scheme.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = iota
	// CompressionZstd compresses the payload with zstd.
	CompressionZstd
	// CompressionLZ4 compresses the payload with the LZ4 frame format.
	CompressionLZ4
)

// String returns the scheme name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

var (
	ErrInvalidMagic       = errors.New("persistence: invalid magic number")
	ErrInvalidVersion     = errors.New("persistence: unsupported version")
	ErrInvalidCompression = errors.New("persistence: unknown compression scheme")
	ErrChecksumMismatch   = errors.New("persistence: payload checksum mismatch")
	ErrTruncated          = errors.New("persistence: truncated envelope")
)

package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Envelope header layout (little endian):
//
//	Magic       u32
//	Version     u32
//	Compression u8
//	CodecLen    u8
//	CodecName   CodecLen bytes
//	PayloadLen  u64  (stored, possibly compressed, length)
//	Checksum    u32  (CRC32-IEEE of the stored payload)
//	Payload     PayloadLen bytes

// Encode wraps a codec payload in the snapshot envelope, applying the given
// compression and a CRC32 checksum over the stored bytes.
func Encode(payload []byte, codecName string, comp Compression) ([]byte, error) {
	if len(codecName) == 0 || len(codecName) > maxCodecNameLen {
		return nil, fmt.Errorf("persistence: codec name length %d out of range", len(codecName))
	}

	stored, err := compress(payload, comp)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(4 + 4 + 1 + 1 + len(codecName) + 8 + 4 + len(stored))

	le := binary.LittleEndian
	var scratch [8]byte

	le.PutUint32(scratch[:4], MagicNumber)
	buf.Write(scratch[:4])
	le.PutUint32(scratch[:4], Version)
	buf.Write(scratch[:4])
	buf.WriteByte(byte(comp))
	buf.WriteByte(byte(len(codecName)))
	buf.WriteString(codecName)
	le.PutUint64(scratch[:8], uint64(len(stored)))
	buf.Write(scratch[:8])
	le.PutUint32(scratch[:4], crc32.ChecksumIEEE(stored))
	buf.Write(scratch[:4])
	buf.Write(stored)

	return buf.Bytes(), nil
}

// Decode verifies the envelope header and checksum and returns the
// decompressed payload together with the codec name it was encoded with.
func Decode(data []byte) (payload []byte, codecName string, err error) {
	r := bytes.NewReader(data)
	le := binary.LittleEndian
	var scratch [8]byte

	if _, err := io.ReadFull(r, scratch[:4]); err != nil {
		return nil, "", ErrTruncated
	}
	if le.Uint32(scratch[:4]) != MagicNumber {
		return nil, "", ErrInvalidMagic
	}

	if _, err := io.ReadFull(r, scratch[:4]); err != nil {
		return nil, "", ErrTruncated
	}
	if le.Uint32(scratch[:4]) != Version {
		return nil, "", ErrInvalidVersion
	}

	if _, err := io.ReadFull(r, scratch[:2]); err != nil {
		return nil, "", ErrTruncated
	}
	comp := Compression(scratch[0])
	nameLen := int(scratch[1])

	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, "", ErrTruncated
	}

	if _, err := io.ReadFull(r, scratch[:8]); err != nil {
		return nil, "", ErrTruncated
	}
	storedLen := le.Uint64(scratch[:8])

	if _, err := io.ReadFull(r, scratch[:4]); err != nil {
		return nil, "", ErrTruncated
	}
	checksum := le.Uint32(scratch[:4])

	if uint64(r.Len()) < storedLen {
		return nil, "", ErrTruncated
	}
	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, "", ErrTruncated
	}

	if crc32.ChecksumIEEE(stored) != checksum {
		return nil, "", ErrChecksumMismatch
	}

	payload, err = decompress(stored, comp)
	if err != nil {
		return nil, "", err
	}
	return payload, string(name), nil
}

func compress(payload []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return payload, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(payload, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrInvalidCompression
	}
}

func decompress(stored []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return stored, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(stored, nil)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(stored)))
	default:
		return nil, ErrInvalidCompression
	}
}

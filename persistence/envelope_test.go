package persistence

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("segments and synapses "), 64)

	for _, comp := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(comp.String(), func(t *testing.T) {
			envelope, err := Encode(payload, "gob", comp)
			require.NoError(t, err)

			got, codecName, err := Decode(envelope)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
			assert.Equal(t, "gob", codecName)
		})
	}
}

func TestEncodeCompresses(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 1<<16)

	plain, err := Encode(payload, "gob", CompressionNone)
	require.NoError(t, err)
	compressed, err := Encode(payload, "gob", CompressionZstd)
	require.NoError(t, err)

	assert.Less(t, len(compressed), len(plain))
}

func TestEncodeRejectsBadCodecName(t *testing.T) {
	_, err := Encode([]byte("x"), "", CompressionNone)
	assert.Error(t, err)

	_, err = Encode([]byte("x"), string(bytes.Repeat([]byte("a"), 256)), CompressionNone)
	assert.Error(t, err)
}

func TestEncodeRejectsUnknownCompression(t *testing.T) {
	_, err := Encode([]byte("x"), "gob", Compression(99))
	assert.ErrorIs(t, err, ErrInvalidCompression)
}

func TestDecodeRejectsInvalidMagic(t *testing.T) {
	envelope, err := Encode([]byte("x"), "gob", CompressionNone)
	require.NoError(t, err)

	envelope[0] ^= 0xFF
	_, _, err = Decode(envelope)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	envelope, err := Encode([]byte("x"), "gob", CompressionNone)
	require.NoError(t, err)

	binary.LittleEndian.PutUint32(envelope[4:8], Version+1)
	_, _, err = Decode(envelope)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestDecodeRejectsChecksumMismatch(t *testing.T) {
	envelope, err := Encode([]byte("important payload"), "gob", CompressionNone)
	require.NoError(t, err)

	envelope[len(envelope)-1] ^= 0xFF
	_, _, err = Decode(envelope)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecodeRejectsTruncation(t *testing.T) {
	envelope, err := Encode([]byte("important payload"), "gob", CompressionZstd)
	require.NoError(t, err)

	// Every prefix of a valid envelope is truncated.
	for i := 0; i < len(envelope); i++ {
		_, _, err := Decode(envelope[:i])
		assert.ErrorIs(t, err, ErrTruncated, "prefix length %d", i)
	}
}

func TestDecodeRejectsUnknownCompressionByte(t *testing.T) {
	envelope, err := Encode([]byte("x"), "gob", CompressionNone)
	require.NoError(t, err)

	// The compression byte sits right after magic and version.
	envelope[8] = 99
	_, _, err = Decode(envelope)
	assert.ErrorIs(t, err, ErrInvalidCompression)
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "zstd", CompressionZstd.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "unknown(7)", Compression(7).String())
}

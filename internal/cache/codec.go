package cache

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// metaZstd marks values stored zstd-compressed in the entry's user meta byte
const metaZstd byte = 1 << 0

// minCompressSize is the smallest value worth compressing
const minCompressSize = 256

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// compress returns the stored form of value and its meta byte. Values that do
// not shrink are kept as-is.
func compress(value []byte) ([]byte, byte) {
	if len(value) < minCompressSize {
		return value, 0
	}
	out := encoder.EncodeAll(value, make([]byte, 0, len(value)/2))
	if len(out) >= len(value) {
		return value, 0
	}
	return out, metaZstd
}

func decompress(stored []byte, meta byte) ([]byte, error) {
	if meta&metaZstd == 0 {
		return stored, nil
	}
	out, err := decoder.DecodeAll(stored, nil)
	if err != nil {
		return nil, fmt.Errorf("decode cached value: %w", err)
	}
	return out, nil
}

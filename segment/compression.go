package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/geosearch/internal/hash"
)

// CompressionType defines the compression algorithm of stored values.
type CompressionType uint8

const (
	// CompressionNone stores values as is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD block compression.
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (CompressionType, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][CRC32C uint32][Data...]
// CompressedSize == 0 means the data is stored uncompressed. The checksum
// covers the first 8 header bytes and the data.
const blockHeaderSize = 12

var errShortBlock = errors.New("block too small for header")

// compressBlock encodes one stored value. Values that do not shrink below
// 90% of their size are stored raw.
func compressBlock(data []byte, compressionType CompressionType) ([]byte, error) {
	var compressed []byte

	switch {
	case len(data) == 0:
	case compressionType == CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case compressionType == CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	}

	payload := data
	compressedSize := 0
	if len(compressed) > 0 && float64(len(compressed)) <= float64(len(data))*0.9 {
		payload = compressed
		compressedSize = len(compressed)
	}

	block := make([]byte, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(block[4:], uint32(compressedSize))
	copy(block[blockHeaderSize:], payload)
	binary.LittleEndian.PutUint32(block[8:], hash.CRC32CBlock(block[:8], payload))
	return block, nil
}

// decompressBlock verifies and decodes one stored value.
func decompressBlock(block []byte, compressionType CompressionType) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errShortBlock
	}

	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])
	checksum := binary.LittleEndian.Uint32(block[8:])

	size := uncompressedSize
	if compressedSize != 0 {
		size = compressedSize
	}
	if uint32(len(block)-blockHeaderSize) < size {
		return nil, errors.New("block data too small")
	}
	payload := block[blockHeaderSize : blockHeaderSize+size]
	if hash.CRC32CBlock(block[:8], payload) != checksum {
		return nil, errors.New("checksum mismatch")
	}

	if compressedSize == 0 {
		return payload, nil
	}

	result := make([]byte, uncompressedSize)
	switch compressionType {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, result[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("compressed block with compression %s", compressionType)
	}
}

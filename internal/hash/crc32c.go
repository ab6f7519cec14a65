package hash

import (
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// CRC32CBlock checksums a block header followed by its payload without
// concatenating them.
func CRC32CBlock(header, payload []byte) uint32 {
	c := crc32.Update(0, crc32cTable, header)
	return crc32.Update(c, crc32cTable, payload)
}

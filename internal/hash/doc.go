// Package hash provides the checksums used to guard stored column blocks.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go computes with
// hardware instructions where available (SSE4.2 on x86, the CRC extension
// on ARM).
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash

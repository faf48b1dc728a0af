// Package hash provides the checksums used for data integrity.
//
// Index snapshots carry a CRC32 (IEEE) of their uncompressed payload.
// Uploads to S3-compatible stores send a CRC32-Castagnoli checksum the
// server verifies on receipt:
//
//	input.ChecksumCRC32C = aws.String(hash.CRC32CBase64(data))
//
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) for both
// polynomials when available.
package hash

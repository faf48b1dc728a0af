// Package s3 stores index snapshots in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("indexes/"))
//	if err != nil { ... }
//	eng, err := gramsearch.Open(ctx, store, "chr1.gsix")
//
// # Features
//
//   - Range reads, so a snapshot can be streamed through an IO limiter
//   - Multipart uploads for large snapshots, single PUT with CRC32C below
//     the part size
//   - Automatic pagination for listing
//   - Configurable key prefix
package s3

// Package blobstore abstracts where index snapshots are stored.
//
// Snapshots are written once and read whole, so a store only needs
// atomic Put, ranged reads, Delete and List:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// # Built-in Implementations
//
//   - MemoryStore: in-process, for tests
//   - LocalStore: local file system; blobs are memory-mapped
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
package blobstore

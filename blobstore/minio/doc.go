// Package minio stores index snapshots in MinIO or any other S3-compatible
// object store through the MinIO client.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "indexes", "prg/")
//	eng, err := gramsearch.Open(ctx, store, "chr1.gsix")
//
// Works with Ceph, Garage and SeaweedFS as well and pulls in no AWS
// dependencies.
package minio

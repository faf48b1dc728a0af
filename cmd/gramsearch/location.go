package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/gramsearch/blobstore"
	minioblob "github.com/hupe1980/gramsearch/blobstore/minio"
	s3blob "github.com/hupe1980/gramsearch/blobstore/s3"
)

// openLocation resolves a snapshot location to a store and a blob name.
//
//	/data/chr1.gsix                    local file
//	s3://bucket/indexes/chr1.gsix      AWS S3 (default credential chain)
//	minio://host:9000/bucket/chr1.gsix MinIO (MINIO_ACCESS_KEY, MINIO_SECRET_KEY)
func openLocation(ctx context.Context, loc string) (blobstore.Store, string, error) {
	if loc == "" {
		return nil, "", fmt.Errorf("empty snapshot location")
	}
	if !strings.Contains(loc, "://") {
		dir, name := filepath.Split(filepath.Clean(loc))
		if dir == "" {
			dir = "."
		}
		return blobstore.NewLocalStore(dir), name, nil
	}

	u, err := url.Parse(loc)
	if err != nil {
		return nil, "", fmt.Errorf("invalid snapshot location %q: %w", loc, err)
	}
	key := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "s3":
		if u.Host == "" || key == "" {
			return nil, "", fmt.Errorf("invalid s3 location %q: want s3://bucket/key", loc)
		}
		var opts []s3blob.Option
		if ep := os.Getenv("S3_ENDPOINT"); ep != "" {
			opts = append(opts, s3blob.WithEndpoint(ep, true))
		}
		dir, name := path.Split(key)
		opts = append(opts, s3blob.WithPrefix(dir))
		store, err := s3blob.New(ctx, u.Host, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, name, nil

	case "minio":
		bucket, rest, ok := strings.Cut(key, "/")
		if u.Host == "" || !ok || rest == "" {
			return nil, "", fmt.Errorf("invalid minio location %q: want minio://endpoint/bucket/key", loc)
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, "", err
		}
		dir, name := path.Split(rest)
		return minioblob.NewStore(client, bucket, dir), name, nil

	default:
		return nil, "", fmt.Errorf("unsupported snapshot scheme %q", u.Scheme)
	}
}

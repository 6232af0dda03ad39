// Package store mirrors verified result artifacts into object storage. It is
// storage-agnostic via gocloud.dev/blob; bucket URLs select the driver
// (s3://, gs://, mem://).
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

// Open opens the bucket identified by bucketURL. The caller must close it.
func Open(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	return bucket, nil
}

// Put streams r into the bucket under key.
func Put(ctx context.Context, bucket *blob.Bucket, key string, r io.Reader) error {
	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create object %s: %w", key, err)
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

// PutFile uploads the local file at path under its base name, or under key
// when key is non-empty. It returns the object key used.
func PutFile(ctx context.Context, bucket *blob.Bucket, key, path string) (string, error) {
	if key == "" {
		key = filepath.Base(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := Put(ctx, bucket, key, f); err != nil {
		return "", err
	}
	return key, nil
}

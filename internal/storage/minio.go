package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"

	"matreshka-feed/internal/domain"
)

// MinioStore keeps blobs as objects in a public-read bucket. Refs are
// object keys; URL builds the public address served to clients.
type MinioStore struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string
	publicSSL      bool
}

func NewMinioStore(client *minio.Client, bucket, publicEndpoint string, publicSSL bool) *MinioStore {
	return &MinioStore{
		client:         client,
		bucket:         bucket,
		publicEndpoint: publicEndpoint,
		publicSSL:      publicSSL,
	}
}

func (s *MinioStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}
	return name, nil
}

func (s *MinioStore) Get(ctx context.Context, ref string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(ref), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; surface missing keys now.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrBlobNotFound
		}
		return nil, err
	}
	return obj, nil
}

func (s *MinioStore) Delete(ctx context.Context, ref string) error {
	// RemoveObject on an absent key already succeeds, which gives the
	// idempotency the delete path relies on.
	return s.client.RemoveObject(ctx, s.bucket, s.objectKey(ref), minio.RemoveObjectOptions{})
}

func (s *MinioStore) URL(ref string) string {
	scheme := "http"
	if s.publicSSL {
		scheme = "https"
	}
	segments := strings.Split(ref, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.publicEndpoint, s.bucket, strings.Join(segments, "/"))
}

func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// objectKey tolerates refs that are full public URLs from older
// records: everything up to and including the bucket segment is
// stripped, best effort. Keys that never existed simply make Delete a
// no-op downstream.
func (s *MinioStore) objectKey(ref string) string {
	if !strings.Contains(ref, "://") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	path := strings.TrimPrefix(u.Path, "/")
	if rest, ok := strings.CutPrefix(path, s.bucket+"/"); ok {
		path = rest
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}

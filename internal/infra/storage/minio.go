package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
)

// Store archives analysis records as JSON objects in a MinIO bucket.
type Store struct {
	client     *minio.Client
	bucketName string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket}, nil
}

// ObjectKey returns where a record is archived: analyses/<owner>/<id>.json,
// with "anonymous" standing in for an empty owner.
func ObjectKey(r *domain.Record) string {
	owner := r.OwnerID
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join("analyses", path.Base(owner), path.Base(r.ID)+".json")
}

// Put implements analysis.Archive and returns the object URL.
func (s *Store) Put(ctx context.Context, r *domain.Record) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record %s: %w", r.ID, err)
	}

	key := ObjectKey(r)
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", err
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key)
	return url, nil
}

package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps images in a MinIO/S3 compatible bucket. The bucket is
// expected to allow anonymous reads so the returned URLs stay valid.
type MinioStore struct {
	client *minio.Client
	bucket string
	base   string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	base := strings.TrimRight(client.EndpointURL().String(), "/") + "/" + bucket
	return &MinioStore{client: client, bucket: bucket, base: base}, nil
}

// Put uploads data under "projects/<uuid>-<name>" and returns its public URL.
func (m *MinioStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := "projects/" + uuid.NewString() + "-" + name
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return m.base + "/" + key, nil
}

// Delete removes the object behind a URL returned by Put.
func (m *MinioStore) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, m.base+"/")
	if !ok {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/medibridge/carepipe/internal/domain/records"
)

type Store struct {
	client        *minio.Client
	bucketName    string
	region        string
	timeout       time.Duration
	presignExpiry time.Duration
}

// Options untuk koneksi MinIO
type Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Timeout       time.Duration
	PresignExpiry time.Duration // 0 → plain object URL (public bucket); else SignURL presigns on read
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, o Options) (*Store, error) {
	cli, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
		Region: o.Region,
	})
	if err != nil {
		return nil, err
	}

	s := &Store{
		client:        cli,
		bucketName:    o.Bucket,
		region:        o.Region,
		timeout:       o.Timeout,
		presignExpiry: o.PresignExpiry,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	exists, err := cli.BucketExists(ctx, o.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, o.Bucket, minio.MakeBucketOptions{Region: o.Region}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put uploads data under key and returns its durable object URL. Never
// returns a partial URL.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", records.ErrStorageUnavailable, key, err)
	}

	return ObjectURL(s.client.EndpointURL(), s.bucketName, key), nil
}

// SignURL turns a stored object URL into a presigned GET URL valid for the
// configured expiry. URLs outside the bucket, and every URL when presigning
// is off, pass through unchanged.
func (s *Store) SignURL(ctx context.Context, stored string) (string, error) {
	if s.presignExpiry <= 0 {
		return stored, nil
	}
	key, ok := ObjectKeyFromURL(s.client.EndpointURL(), s.bucketName, stored)
	if !ok {
		return stored, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %v", records.ErrStorageUnavailable, key, err)
	}
	return u.String(), nil
}

// ObjectURL builds the public-bucket URL of an object.
func ObjectURL(endpoint *url.URL, bucket, key string) string {
	scheme := endpoint.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint.Host, bucket, key)
}

// ObjectKeyFromURL reverses ObjectURL for objects in bucket on endpoint.
func ObjectKeyFromURL(endpoint *url.URL, bucket, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host != endpoint.Host {
		return "", false
	}
	key, ok := strings.CutPrefix(u.Path, "/"+bucket+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"fitreport/internal/config"
)

// CacheControl is set on every uploaded object (3600 seconds).
const CacheControl = "max-age=3600"

// ErrObjectExists is returned when an upload targets a path that already holds an object.
var ErrObjectExists = errors.New("storage: object already exists")

// Client wraps a MinIO client bound to one bucket.
type Client struct {
	internalClient *minio.Client
	bucketName     string
}

// UploadResult describes a stored object.
type UploadResult struct {
	Path string
	Size int64
	ETag string
}

// NewClient builds a MinIO client from cfg and makes sure the bucket exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		internalClient: internalClient,
		bucketName:     cfg.Bucket,
	}, nil
}

// Bucket returns the bucket name objects are written to.
func (c *Client) Bucket() string {
	return c.bucketName
}

// UploadFile stores reader at objectPath. Existing objects are never overwritten:
// the call fails with ErrObjectExists instead.
func (c *Client) UploadFile(ctx context.Context, objectPath string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" {
		return nil, errors.New("storage: empty object path")
	}

	if _, err := c.internalClient.StatObject(ctx, c.bucketName, objectPath, minio.StatObjectOptions{}); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectExists, objectPath)
	} else if !IsNoSuchKey(err) {
		return nil, fmt.Errorf("stat object %q: %w", objectPath, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: CacheControl,
	}
	info, err := c.internalClient.PutObject(ctx, c.bucketName, objectPath, reader, size, opts)
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", objectPath, err)
	}
	return &UploadResult{Path: objectPath, Size: info.Size, ETag: info.ETag}, nil
}

package export

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"barfeed/internal/config"
)

// ObjectStore is the subset of *minio.Client the uploader uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader copies exported files to an S3-compatible bucket.
type Uploader struct {
	store  ObjectStore
	bucket string
	prefix string

	once      sync.Once
	bucketErr error
}

// NewMinioClient builds an S3 client from cfg.
func NewMinioClient(cfg config.S3) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return client, nil
}

func NewUploader(store ObjectStore, bucket, prefix string) *Uploader {
	return &Uploader{store: store, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// ObjectName returns "{prefix}/{basename}", or just the base name without a
// prefix.
func (u *Uploader) ObjectName(localPath string) string {
	base := filepath.Base(localPath)
	if u.prefix == "" {
		return base
	}
	return path.Join(u.prefix, base)
}

// Upload puts localPath into the bucket, creating the bucket on first use.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	u.once.Do(func() { u.bucketErr = u.ensureBucket(ctx) })
	if u.bucketErr != nil {
		return "", u.bucketErr
	}

	objectName := u.ObjectName(localPath)
	info, err := u.store.FPutObject(ctx, u.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", objectName, err)
	}
	log.WithFields(log.Fields{"bucket": u.bucket, "object": objectName, "size": info.Size}).Info("uploaded export")
	return objectName, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	exists, err := u.store.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", u.bucket, err)
	}
	if exists {
		return nil
	}
	if err := u.store.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", u.bucket, err)
	}
	return nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Ezhil1K/ChemSure/config"
	"github.com/Ezhil1K/ChemSure/model"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the subset of the MINIO client the archive uses
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive keeps a copy of every MSDS document accepted for upload
type Archive struct {
	store  ObjectStore
	bucket string
	prefix string
	now    func() time.Time
}

func NewArchive(cfg *config.ArchiveConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return newArchive(client, cfg.Bucket, cfg.Prefix), nil
}

func newArchive(store ObjectStore, bucket, prefix string) *Archive {
	return &Archive{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := a.store.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Save stores the document and returns its object name
func (a *Archive) Save(ctx context.Context, filename string, content io.Reader, size int64) (string, error) {
	objectName := a.ObjectName(filename)
	_, err := a.store.PutObject(ctx, a.bucket, objectName, content, size, minio.PutObjectOptions{
		ContentType: model.MediaTypePDF,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive file: %w", err)
	}
	return objectName, nil
}

// ObjectName builds <prefix>/<yyyy>/<mm>/<dd>/<uuid>/<filename>
func (a *Archive) ObjectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "msds.pdf"
	}
	parts := []string{a.now().UTC().Format("2006/01/02"), uuid.New().String(), base}
	if a.prefix != "" {
		parts = append([]string{a.prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Ezhil1K/ChemSure/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *mockObjectStore) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *mockObjectStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func fixedArchive(store ObjectStore, prefix string) *Archive {
	a := newArchive(store, "msds-archive", prefix)
	a.now = func() time.Time { return time.Date(2026, 3, 7, 23, 30, 0, 0, time.UTC) }
	return a
}

func TestNewArchive(t *testing.T) {
	a, err := NewArchive(&config.ArchiveConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "msds-archive",
		Prefix:    "/msds/",
	})
	require.NoError(t, err)
	assert.Equal(t, "msds-archive", a.bucket)
	assert.Equal(t, "msds", a.prefix)
}

func TestArchiveObjectName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		filename string
		head     string
		tail     string
	}{
		{"plain", "msds", "sheet.pdf", "msds/2026/03/07/", "/sheet.pdf"},
		{"no prefix", "", "sheet.pdf", "2026/03/07/", "/sheet.pdf"},
		{"path stripped", "msds", "../../etc/passwd.pdf", "msds/2026/03/07/", "/passwd.pdf"},
		{"windows path", "msds", `C:\docs\sds.pdf`, "msds/2026/03/07/", "/sds.pdf"},
		{"empty name", "msds", "", "msds/2026/03/07/", "/msds.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := fixedArchive(nil, tt.prefix).ObjectName(tt.filename)

			assert.True(t, strings.HasPrefix(name, tt.head), name)
			assert.True(t, strings.HasSuffix(name, tt.tail), name)
			id := strings.TrimSuffix(strings.TrimPrefix(name, tt.head), tt.tail)
			_, err := uuid.Parse(id)
			assert.NoError(t, err, "expected uuid segment, got %q", id)
		})
	}
}

func TestArchiveSave(t *testing.T) {
	store := new(mockObjectStore)
	content := strings.NewReader("%PDF-1.4")
	store.On("PutObject", mock.Anything, "msds-archive",
		mock.MatchedBy(func(name string) bool { return strings.HasSuffix(name, "/sheet.pdf") }),
		content, int64(8), minio.PutObjectOptions{ContentType: "application/pdf"},
	).Return(minio.UploadInfo{}, nil)

	name, err := fixedArchive(store, "msds").Save(context.Background(), "sheet.pdf", content, 8)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "msds/2026/03/07/"))
	store.AssertExpectations(t)
}

func TestArchiveSaveError(t *testing.T) {
	store := new(mockObjectStore)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection refused"))

	_, err := fixedArchive(store, "msds").Save(context.Background(), "sheet.pdf", strings.NewReader("x"), 1)

	assert.ErrorContains(t, err, "failed to archive file")
}

func TestArchiveEnsureBucket(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		store := new(mockObjectStore)
		store.On("BucketExists", mock.Anything, "msds-archive").Return(true, nil)

		require.NoError(t, fixedArchive(store, "").EnsureBucket(context.Background()))
		store.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		store := new(mockObjectStore)
		store.On("BucketExists", mock.Anything, "msds-archive").Return(false, nil)
		store.On("MakeBucket", mock.Anything, "msds-archive", minio.MakeBucketOptions{}).Return(nil)

		require.NoError(t, fixedArchive(store, "").EnsureBucket(context.Background()))
		store.AssertExpectations(t)
	})

	t.Run("check fails", func(t *testing.T) {
		store := new(mockObjectStore)
		store.On("BucketExists", mock.Anything, "msds-archive").Return(false, errors.New("denied"))

		assert.ErrorContains(t, fixedArchive(store, "").EnsureBucket(context.Background()), "failed to check bucket")
	})
}

package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/library-catalog/pkg/helpers"
)

// CoverStorage stores book cover images in a GCS bucket.
type CoverStorage struct {
	client *storage.Client
	bucket string
}

func NewCoverStorage(client *storage.Client, bucket string) *CoverStorage {
	return &CoverStorage{client: client, bucket: bucket}
}

// ObjectPath returns covers/<bookID>/<random><ext>.
func ObjectPath(bookID, ext string) string {
	return path.Join("covers", bookID, uuid.NewString()+strings.ToLower(ext))
}

// Upload writes the image and returns its public URL.
func (s *CoverStorage) Upload(ctx context.Context, bookID, ext, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, ObjectPath(bookID, ext), contentType, r)
}

// Remove deletes the object behind a URL returned by Upload. URLs that point
// elsewhere are left alone.
func (s *CoverStorage) Remove(ctx context.Context, url string) error {
	objectPath, ok := helpers.ObjectPathFromURL(s.bucket, url)
	if !ok {
		return nil
	}
	return helpers.DeleteObject(ctx, s.client, s.bucket, objectPath)
}

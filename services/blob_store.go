package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore is the opaque payload store files pass through. It is not part
// of the database transaction boundary, so callers must compensate with
// Delete when a write succeeds but the surrounding operation fails.
type BlobStore interface {
	Put(sourcePath string) (string, error)
	Delete(blobID string) error
}

// DiskBlobStore keeps payloads under a root directory, one file per blob,
// named by a random UUID so original filenames never collide.
type DiskBlobStore struct {
	Root string
}

// NewDiskBlobStore creates the root directory if needed.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskBlobStore{Root: root}, nil
}

// Put copies the file at sourcePath into the store and returns the blob id.
func (s *DiskBlobStore) Put(sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open payload: %w", err)
	}
	defer src.Close()

	blobID := uuid.NewString() + filepath.Ext(sourcePath)
	dstPath := filepath.Join(s.Root, blobID)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return blobID, nil
}

// Delete removes the blob. Missing blobs are not an error.
func (s *DiskBlobStore) Delete(blobID string) error {
	err := os.Remove(filepath.Join(s.Root, blobID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the on-disk location of a blob for download handlers.
func (s *DiskBlobStore) Path(blobID string) string {
	return filepath.Join(s.Root, blobID)
}

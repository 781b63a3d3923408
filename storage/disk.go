// Package storage holds the media storage collaborator consumed by the
// upload endpoints. The core only depends on the BlobStorage interface.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/huddlechat/huddle/config"
)

// BlobStorage stores an uploaded image and returns the public URL it is
// served under.
type BlobStorage interface {
	StoreImage(r io.Reader, originalName string) (string, error)
	StoreProfileImage(r io.Reader, userId, originalName string) (string, error)
}

// DiskStorage writes uploads to a local directory.
type DiskStorage struct {
	dir     string
	baseURL string
}

func NewDiskStorage(cfg *config.Config) (*DiskStorage, error) {
	dir := cfg.UploadConfig.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(cfg.UploadConfig.BaseURL, "/"),
	}, nil
}

// StoreImage saves a chat image under a unique timestamped name.
func (s *DiskStorage) StoreImage(r io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("image_%d%s", time.Now().UnixNano(), extensionFor(data, originalName))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// StoreProfileImage saves a profile picture under a per-user name,
// replacing any previous one with the same extension.
func (s *DiskStorage) StoreProfileImage(r io.Reader, userId, originalName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("profile_image_%s%s", userId, extensionFor(data, originalName))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// extensionFor keeps the client's extension when there is one and falls
// back to content sniffing otherwise.
func extensionFor(data []byte, originalName string) string {
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		return ext
	}
	return mimetype.Detect(data).Extension()
}

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
)

// ErrBlobTooLarge is returned when an upload exceeds the store's size cap.
var ErrBlobTooLarge = errors.New("blob exceeds maximum size")

// BlobStore is the storage collaborator: it accepts opaque bytes and resolves
// stored ids to public URLs. The core never inspects file contents.
type BlobStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Resolve(stored string) string
}

// LocalBlobStore keeps blobs on the local filesystem under dated directories
// and records each one in the expiry ledger for the background sweeper.
type LocalBlobStore struct {
	BaseDir string
	MaxSize int64
	TTL     time.Duration
	db      *gorm.DB
}

// NewLocalBlobStore creates a store rooted at baseDir (default ./static/uploads).
func NewLocalBlobStore(db *gorm.DB, baseDir string, maxSize int64, ttl time.Duration) *LocalBlobStore {
	if baseDir == "" {
		baseDir = filepath.Join(".", "static", "uploads")
	}
	if maxSize <= 0 {
		maxSize = 50 * 1024 * 1024
	}
	return &LocalBlobStore{BaseDir: baseDir, MaxSize: maxSize, TTL: ttl, db: db}
}

// Save writes the blob and returns its public URL path.
func (s *LocalBlobStore) Save(r io.Reader, originalName string) (string, error) {
	now := time.Now()
	year := now.Format("2006")
	month := now.Format("01")
	day := now.Format("02")
	dir := filepath.Join(s.BaseDir, year, month, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s%s", uuid.NewString(), safeExt(originalName))
	dstPath := filepath.Join(dir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	lr := &io.LimitedReader{R: r, N: s.MaxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	if written > s.MaxSize {
		_ = os.Remove(dstPath)
		return "", ErrBlobTooLarge
	}

	url := fmt.Sprintf("/static/uploads/%s/%s/%s/%s", year, month, day, name)

	if s.db != nil && s.TTL > 0 {
		absPath, _ := filepath.Abs(dstPath)
		rec := models.UploadedFile{FilePath: absPath, URL: url, ExpireAt: now.Add(s.TTL)}
		if err := s.db.Create(&rec).Error; err != nil && Sugar != nil {
			Sugar.Warnf("record uploaded file failed: %v", err)
		}
	}

	return url, nil
}

// Resolve maps a stored id to a public URL. Local blobs are stored by URL path
// already, so this is the identity.
func (s *LocalBlobStore) Resolve(stored string) string {
	return stored
}

func safeExt(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	if len(ext) > 16 {
		return ""
	}
	return ext
}

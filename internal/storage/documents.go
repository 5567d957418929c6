package storage

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/clearance-management/internal"
)

// PathPrefix is the static route the router serves saved documents under.
const PathPrefix = "/uploads"

type SavedDocument struct {
	Filename    string
	StoragePath string
}

// DocumentStore writes uploaded files to disk. Names are a timestamp plus a
// random suffix, so collisions are avoided by randomness rather than content
// hashing; the file content itself is never inspected.
type DocumentStore struct {
	dir          string
	maxFileBytes int64
	logger       *slog.Logger
}

func NewDocumentStore(dir string, maxFileBytes int64, logger *slog.Logger) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &DocumentStore{
		dir:          dir,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}, nil
}

func (s *DocumentStore) Dir() string {
	return s.dir
}

// Save stores one multipart file and returns its original filename plus the
// public path it is served from.
func (s *DocumentStore) Save(fh *multipart.FileHeader) (SavedDocument, error) {
	if fh.Size > s.maxFileBytes {
		return SavedDocument{}, internal.NewValidationError(
			fmt.Sprintf("file %s exceeds the %d byte limit", fh.Filename, s.maxFileBytes),
			internal.ErrCodeValidationFailed,
		)
	}

	src, err := fh.Open()
	if err != nil {
		return SavedDocument{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uniqueName(fh.Filename)
	dstPath := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return SavedDocument{}, fmt.Errorf("failed to create document file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return SavedDocument{}, fmt.Errorf("failed to write document file: %w", err)
	}

	s.logger.Info("document stored", "filename", fh.Filename, "stored_as", name, "size", fh.Size)

	return SavedDocument{
		Filename:    name,
		StoragePath: PathPrefix + "/" + name,
	}, nil
}

// Remove deletes stored files; used when a request is hard-deleted. Missing
// files are ignored since the delete must not fail halfway.
func (s *DocumentStore) Remove(filenames []string) {
	for _, name := range filenames {
		// never allow a stored name to escape the uploads dir
		if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove document file", "filename", name, "error", err)
		}
	}
}

func uniqueName(original string) string {
	ext := filepath.Ext(original)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("documents-%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

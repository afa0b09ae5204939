package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rmfarias/fleetreserve/internal/domain"
)

// EvidenceStore persists return-evidence images and hands back an opaque ref.
type EvidenceStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the image under a uuid-based name and returns its public ref.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", domain.NewValidationError("unsupported image format %q, use jpg, jpeg, png or gif", ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create evidence file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return "/uploads/" + name, nil
}

func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	name := filepath.Base(ref)
	return os.Remove(filepath.Join(s.dir, name))
}

func (s *LocalStore) Dir() string {
	return s.dir
}

var _ EvidenceStore = (*LocalStore)(nil)

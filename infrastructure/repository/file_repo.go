package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"cabal-assist/domain/calibration"
)

// profileFile is the YAML layout of the profiles file.
type profileFile struct {
	Profiles []profileDocument `yaml:"profiles"`
}

// FileProfileRepository implements calibration.Repository on a single YAML
// file. Every write replaces the file atomically.
type FileProfileRepository struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileProfileRepository creates a repository backed by the file at path.
// The file and its directory are created on the first save.
func NewFileProfileRepository(path string, logger *slog.Logger) *FileProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProfileRepository{path: path, logger: logger}
}

// FindByName retrieves a profile by name.
func (r *FileProfileRepository) FindByName(ctx context.Context, name string) (*calibration.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].Name == name {
			return documentToProfile(&docs[i]), nil
		}
	}
	return nil, nil
}

// FindAll retrieves all profiles sorted by name.
func (r *FileProfileRepository) FindAll(ctx context.Context) ([]*calibration.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.read()
	if err != nil {
		return nil, err
	}
	profiles := make([]*calibration.Profile, len(docs))
	for i := range docs {
		profiles[i] = documentToProfile(&docs[i])
	}
	return profiles, nil
}

// Save inserts or replaces a profile by name.
func (r *FileProfileRepository) Save(ctx context.Context, p *calibration.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.read()
	if err != nil {
		return err
	}

	doc := *profileToDocument(p)
	replaced := false
	for i := range docs {
		if docs[i].Name == p.Name {
			docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, doc)
	}

	if err := r.write(docs); err != nil {
		return err
	}
	r.logger.Debug("Profile saved", "name", p.Name, "path", r.path)
	return nil
}

// Delete removes a profile by name.
func (r *FileProfileRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.read()
	if err != nil {
		return err
	}

	kept := docs[:0]
	for _, doc := range docs {
		if doc.Name != name {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(docs) {
		return calibration.ErrProfileNotFound
	}

	if err := r.write(kept); err != nil {
		return err
	}
	r.logger.Info("Profile deleted", "name", name)
	return nil
}

func (r *FileProfileRepository) read() ([]profileDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse profiles %s: %w", r.path, err)
	}
	sort.Slice(f.Profiles, func(i, j int) bool {
		return f.Profiles[i].Name < f.Profiles[j].Name
	})
	return f.Profiles, nil
}

func (r *FileProfileRepository) write(docs []profileDocument) error {
	data, err := yaml.Marshal(&profileFile{Profiles: docs})
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".profiles-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace profiles: %w", err)
	}
	return nil
}

// Ensure FileProfileRepository implements calibration.Repository
var _ calibration.Repository = (*FileProfileRepository)(nil)

package practice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/gitsource"
	"github.com/conorfennell/promptdeck/internal/storage"
	sourcesync "github.com/conorfennell/promptdeck/internal/sync"
)

// SourceStore persists prompt sources.
type SourceStore interface {
	InsertSource(ctx context.Context, path, sourceType string) (int64, error)
	FindSourceByPath(ctx context.Context, path string) (*storage.Source, error)
	GetAllSources(ctx context.Context) ([]storage.Source, error)
	DeleteSource(ctx context.Context, sourceID int64) error
}

// Syncer reconciles every source into imported cards.
type Syncer interface {
	RunSync(ctx context.Context) ([]sourcesync.Report, error)
}

// ErrNoSyncer is returned by Sync when the service was built without one.
var ErrNoSyncer = errors.New("source sync is not configured")

// AddSource registers a local directory or git URL. Adding a path that is
// already registered returns the existing source.
func (s *Service) AddSource(ctx context.Context, path string) (storage.Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return storage.Source{}, &domain.ValidationError{Fields: []string{"Path is required"}}
	}

	sourceType := storage.SourceLocal
	if gitsource.IsGitURL(path) {
		sourceType = storage.SourceGit
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			return storage.Source{}, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return storage.Source{}, &domain.ValidationError{Fields: []string{"Path must be an existing directory"}}
		}
		path = abs
	}

	existing, err := s.store.FindSourceByPath(ctx, path)
	if err != nil {
		return storage.Source{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	id, err := s.store.InsertSource(ctx, path, sourceType)
	if err != nil {
		return storage.Source{}, err
	}
	return storage.Source{ID: id, Path: path, Type: sourceType}, nil
}

// ListSources returns every registered source.
func (s *Service) ListSources(ctx context.Context) ([]storage.Source, error) {
	return s.store.GetAllSources(ctx)
}

// DeleteSource removes a source together with its imported cards.
func (s *Service) DeleteSource(ctx context.Context, id int64) error {
	return s.store.DeleteSource(ctx, id)
}

// Sync reconciles all sources.
func (s *Service) Sync(ctx context.Context) ([]sourcesync.Report, error) {
	if s.syncer == nil {
		return nil, ErrNoSyncer
	}
	return s.syncer.RunSync(ctx)
}

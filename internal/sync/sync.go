package sync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/promptdeck/internal/cardid"
	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/gitsource"
	"github.com/conorfennell/promptdeck/internal/parser"
	"github.com/conorfennell/promptdeck/internal/storage"
)

// Report summarizes the reconciliation of one source.
type Report struct {
	SourceID    int64    `json:"sourceId"`
	Path        string   `json:"path"`
	ParsedCards int      `json:"parsedCards"`
	Inserted    int      `json:"inserted"`
	Orphaned    int      `json:"orphaned"`
	Errors      []string `json:"errors,omitempty"`
}

// Syncer reconciles prompt sources into the cards table.
type Syncer struct {
	DB       *storage.DB
	ReposDir string
	Progress io.Writer
}

// RunSync iterates over all sources and reconciles them. A failing source is
// reported and skipped; only failing to list sources aborts the run.
func (s *Syncer) RunSync(ctx context.Context) ([]Report, error) {
	slog.Info("Starting sync process for all sources")
	sources, err := s.DB.GetAllSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured")
		return nil, nil
	}

	var reports []Report
	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		sourceToReconcile := source
		if source.Type == storage.SourceGit {
			localRepoPath, err := s.checkout(ctx, source.Path)
			if err != nil {
				slog.Error("Error syncing git repo", "url", source.Path, "error", err)
				reports = append(reports, Report{SourceID: source.ID, Path: source.Path, Errors: []string{err.Error()}})
				continue
			}
			sourceToReconcile.Path = localRepoPath
		}

		report := s.reconcile(ctx, sourceToReconcile)
		report.Path = source.Path
		reports = append(reports, report)
	}
	slog.Info("Sync process complete", "sources", len(sources))
	return reports, nil
}

func (s *Syncer) checkout(ctx context.Context, repoURL string) (string, error) {
	if err := os.MkdirAll(s.ReposDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create repos directory: %w", err)
	}
	localRepoPath, err := gitsource.LocalPath(s.ReposDir, repoURL)
	if err != nil {
		return "", err
	}
	if err := gitsource.Sync(ctx, repoURL, localRepoPath, s.Progress); err != nil {
		return "", err
	}
	return localRepoPath, nil
}

func (s *Syncer) reconcile(ctx context.Context, source storage.Source) Report {
	report := Report{SourceID: source.ID}
	var parseErrors []error
	foundCardIDs := make(map[string]bool)

	walkErr := filepath.WalkDir(source.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileCards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
		}
		for _, card := range fileCards {
			card.ID = cardid.ID(card)
			report.ParsedCards++
			if foundCardIDs[card.ID] {
				continue
			}
			foundCardIDs[card.ID] = true

			inserted, err := s.insertIfNew(ctx, card, source.ID)
			if err != nil {
				parseErrors = append(parseErrors, err)
				continue
			}
			if inserted {
				report.Inserted++
			}
		}
		return nil
	})

	if walkErr != nil {
		slog.Error("Error walking directory", "path", source.Path, "error", walkErr)
		report.Errors = append(report.Errors, walkErr.Error())
		return report
	}

	dbCards, err := s.DB.GetCardsBySourceID(ctx, source.ID)
	if err != nil {
		slog.Error("Error getting cards for source", "source_id", source.ID, "error", err)
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	for _, dbCard := range dbCards {
		if !foundCardIDs[dbCard.ID] {
			slog.Info("Orphaned card, deleting", "id", dbCard.ID)
			report.Orphaned++
			if err := s.DB.DeleteCardByID(ctx, dbCard.ID); err != nil {
				slog.Warn("Failed to delete orphaned card", "id", dbCard.ID, "error", err)
			}
		}
	}
	if err := s.DB.UpdateSourceLastScanned(ctx, source.ID); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
	}

	for _, e := range parseErrors {
		report.Errors = append(report.Errors, e.Error())
	}

	slog.Info("reconciliation complete",
		"path", source.Path,
		"parsed_cards", report.ParsedCards,
		"inserted", report.Inserted,
		"orphaned_deleted", report.Orphaned,
		"errors", len(report.Errors),
	)
	return report
}

func (s *Syncer) insertIfNew(ctx context.Context, card domain.Card, sourceID int64) (bool, error) {
	existing, err := s.DB.FindCardByID(ctx, card.ID)
	if err != nil {
		return false, fmt.Errorf("db check for %s: %w", card.ID, err)
	}
	if existing != nil {
		return false, nil
	}
	slog.Info("New card found, inserting", "id", card.ID)
	if err := s.DB.InsertCard(ctx, card, sourceID); err != nil {
		return false, fmt.Errorf("db insert for %s: %w", card.ID, err)
	}
	return true, nil
}

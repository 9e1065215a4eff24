package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/conorfennell/promptdeck/internal/catalog"
	"github.com/conorfennell/promptdeck/internal/config"
	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/practice"
	"github.com/conorfennell/promptdeck/internal/storage"
	"github.com/conorfennell/promptdeck/internal/sync"
)

const usage = `Usage: promptdeck <command> [flags]

Commands:
  draw                          Draw a history-balanced practice prompt
  balance                       Show recent draws per suit
  history [--clear]             List or clear the draw history
  improv [--single] [--reroll-always ids] [--reroll-suits ids]
                                Draw improvisation constraints
  prompts list|add|update|delete
                                Manage custom prompts
  sources list|add|delete       Manage prompt sources
  sync                          Import prompts from all sources
  serve                         Run the JSON HTTP API
`

// command runs one subcommand. fs holds its parsed flags.
type command func(ctx context.Context, app *app, fs *pflag.FlagSet) error

type app struct {
	cfg config.Config
	db  *storage.DB
	svc *practice.Service
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	name := os.Args[1]

	commands := map[string]struct {
		flags func(*pflag.FlagSet)
		run   command
	}{
		"draw":    {nil, runDraw},
		"balance": {nil, runBalance},
		"history": {historyFlags, runHistory},
		"improv":  {improvFlags, runImprov},
		"prompts": {promptFlags, runPrompts},
		"sources": {nil, runSources},
		"sync":    {nil, runSync},
		"serve":   {nil, runServe},
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	defer a.db.Close()

	if err := cmd.run(ctx, a, fs); err != nil {
		slog.Error("Command failed", "command", name, "error", err)
		stop()
		a.db.Close()
		os.Exit(1)
	}
}

func newApp(cfg config.Config) (*app, error) {
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	slog.Debug("Database opened successfully", "path", cfg.DB)

	practiceDeck, err := loadDeck(cfg.PracticeCatalog, catalog.Practice)
	if err != nil {
		db.Close()
		return nil, err
	}
	improvDeck, err := loadDeck(cfg.ImprovCatalog, catalog.Improv)
	if err != nil {
		db.Close()
		return nil, err
	}

	svc, err := practice.New(db, practice.Options{
		Practice: practiceDeck,
		Improv:   improvDeck,
		Bias:     cfg.Bias(),
		Settings: cfg.Settings(),
		Syncer:   &sync.Syncer{DB: db, ReposDir: cfg.ReposDir, Progress: os.Stderr},
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &app{cfg: cfg, db: db, svc: svc}, nil
}

// loadDeck reads a catalog override, or the built-in catalog name when
// path is empty.
func loadDeck(path, name string) (domain.Deck, error) {
	f, err := catalog.Resolve(path, name)
	if err != nil {
		return domain.Deck{}, err
	}
	return f.Deck(), nil
}

// Package practice wires the draw engine to the deck catalogs and storage.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/conorfennell/promptdeck/internal/catalog"
	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/rng"
	"github.com/conorfennell/promptdeck/internal/rotation"
)

// HistoryStore persists the draw history.
type HistoryStore interface {
	GetHistory(ctx context.Context) ([]domain.DrawEvent, error)
	Append(ctx context.Context, e domain.DrawEvent) error
	Clear(ctx context.Context) error
}

// PromptStore persists user-authored prompts.
type PromptStore interface {
	ListPrompts(ctx context.Context) ([]domain.CustomPrompt, error)
	FindPrompt(ctx context.Context, id string) (domain.CustomPrompt, error)
	InsertPrompt(ctx context.Context, p domain.CustomPrompt) error
	UpdatePrompt(ctx context.Context, p domain.CustomPrompt) error
	DeletePrompt(ctx context.Context, id string) error
}

// CardStore lists cards imported from prompt sources.
type CardStore interface {
	AllCards(ctx context.Context) ([]domain.Card, error)
}

// Store is everything the service needs from persistence. storage.DB
// implements it.
type Store interface {
	HistoryStore
	PromptStore
	CardStore
	SourceStore
}

// Options configure a Service.
type Options struct {
	Practice domain.Deck
	Improv   domain.Deck
	Bias     domain.BiasConfig
	Settings domain.Settings
	Syncer   Syncer

	// Now and Rand default to time.Now and rng.Default.
	Now  func() time.Time
	Rand rng.Source
}

// Service is the application layer shared by the CLI and the HTTP API.
type Service struct {
	store    Store
	syncer   Syncer
	practice domain.Deck
	improv   domain.Deck
	bias     domain.BiasConfig
	settings domain.Settings
	now      func() time.Time

	// mu serializes use of src and keeps read-draw-append atomic within
	// the process.
	mu  sync.Mutex
	src rng.Source
}

// New creates a Service. Decks left unset in opts fall back to the
// embedded catalogs. A deck that is set but has no cards is kept as is.
func New(store Store, opts Options) (*Service, error) {
	if unset(opts.Practice) {
		f, err := catalog.Builtin(catalog.Practice)
		if err != nil {
			return nil, err
		}
		opts.Practice = f.Deck()
	}
	if unset(opts.Improv) {
		f, err := catalog.Builtin(catalog.Improv)
		if err != nil {
			return nil, err
		}
		opts.Improv = f.Deck()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rng.Default()
	}
	return &Service{
		store:    store,
		syncer:   opts.Syncer,
		practice: opts.Practice,
		improv:   opts.Improv,
		bias:     opts.Bias,
		settings: opts.Settings,
		now:      opts.Now,
		src:      opts.Rand,
	}, nil
}

func unset(d domain.Deck) bool {
	return d.Name == "" && d.Suits == nil && d.Cards == nil
}

// Deck returns the practice deck: the catalog plus imported cards plus
// custom prompts.
func (s *Service) Deck(ctx context.Context) (domain.Deck, error) {
	imported, err := s.store.AllCards(ctx)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to load imported cards: %w", err)
	}
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to load custom prompts: %w", err)
	}
	custom := make([]domain.Card, len(prompts))
	for i, p := range prompts {
		custom[i] = p.Card()
	}
	return catalog.Assemble(s.practice, imported, custom), nil
}

// DrawPractice draws a history-biased card and records it. The card is
// returned only once the draw event is stored.
func (s *Service) DrawPractice(ctx context.Context) (domain.Card, error) {
	deck, err := s.Deck(ctx)
	if err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to read history: %w", err)
	}
	now := s.now()
	card, err := rotation.DrawBiasedCard(deck, history, s.bias, now, s.src)
	if err != nil {
		return domain.Card{}, err
	}
	if err := s.store.Append(ctx, domain.NewDrawEvent(card, now)); err != nil {
		return domain.Card{}, fmt.Errorf("failed to record draw: %w", err)
	}
	return card, nil
}

// Balance reports recent draws per suit of the practice deck.
func (s *Service) Balance(ctx context.Context) ([]rotation.SuitBalance, error) {
	deck, err := s.Deck(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return rotation.Balance(deck, history, s.bias.WindowDays, s.now()), nil
}

// History returns every recorded draw in append order.
func (s *Service) History(ctx context.Context) ([]domain.DrawEvent, error) {
	return s.store.GetHistory(ctx)
}

// ClearHistory drops every recorded draw.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// ListPrompts returns the custom prompts in creation order.
func (s *Service) ListPrompts(ctx context.Context) ([]domain.CustomPrompt, error) {
	return s.store.ListPrompts(ctx)
}

// AddPrompt validates and stores a new custom prompt.
func (s *Service) AddPrompt(ctx context.Context, title, body string) (domain.CustomPrompt, error) {
	now := s.now()
	p := domain.CustomPrompt{
		ID:        newPromptID(),
		Title:     strings.TrimSpace(title),
		Body:      strings.TrimSpace(body),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.Validate(p); err != nil {
		return domain.CustomPrompt{}, err
	}
	if err := s.store.InsertPrompt(ctx, p); err != nil {
		return domain.CustomPrompt{}, err
	}
	return p, nil
}

// UpdatePrompt replaces the title and body of an existing prompt.
func (s *Service) UpdatePrompt(ctx context.Context, id, title, body string) (domain.CustomPrompt, error) {
	p, err := s.store.FindPrompt(ctx, id)
	if err != nil {
		return domain.CustomPrompt{}, err
	}
	p.Title = strings.TrimSpace(title)
	p.Body = strings.TrimSpace(body)
	p.UpdatedAt = s.now()
	if err := domain.Validate(p); err != nil {
		return domain.CustomPrompt{}, err
	}
	if err := s.store.UpdatePrompt(ctx, p); err != nil {
		return domain.CustomPrompt{}, err
	}
	return p, nil
}

// DeletePrompt removes a custom prompt.
func (s *Service) DeletePrompt(ctx context.Context, id string) error {
	return s.store.DeletePrompt(ctx, id)
}

// IsNotFound reports whether err is one of the lookup failures.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrPromptNotFound) ||
		errors.Is(err, domain.ErrSourceNotFound) ||
		errors.Is(err, domain.ErrUnknownCard)
}

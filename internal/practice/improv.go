package practice

import (
	"fmt"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/draw"
)

// ImprovDeck returns the improvisation deck.
func (s *Service) ImprovDeck() domain.Deck {
	return s.improv
}

// DefaultSettings returns the configured improv draw settings.
func (s *Service) DefaultSettings() domain.Settings {
	return s.settings
}

// DrawImprov draws an always-include card plus one card per suit.
func (s *Service) DrawImprov(settings domain.Settings) ([]domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw.FromDeck(s.improv, s.src).DrawCards(settings)
}

// RerollAlways swaps the always-include card of the draw identified by ids.
func (s *Service) RerollAlways(ids []string) ([]domain.Card, error) {
	current, err := s.resolve(ids)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw.FromDeck(s.improv, s.src).RerollAlwaysInclude(current)
}

// RerollSuits redraws the technical cards of the draw identified by ids.
func (s *Service) RerollSuits(ids []string, settings domain.Settings) ([]domain.Card, error) {
	current, err := s.resolve(ids)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw.FromDeck(s.improv, s.src).RerollSuitCards(current, settings)
}

// DrawImprovSingle draws one improv card, skipping the always-include
// category unless includeAlways is set.
func (s *Service) DrawImprovSingle(includeAlways bool) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw.DrawSingle(s.improv.Cards, s.improv.AlwaysInclude, includeAlways, s.src)
}

func (s *Service) resolve(ids []string) ([]domain.Card, error) {
	byID := make(map[string]domain.Card, len(s.improv.Cards))
	for _, c := range s.improv.Cards {
		byID[c.ID] = c
	}
	cards := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCard, id)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

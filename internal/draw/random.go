package draw

import (
	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/rng"
)

// DrawRandom picks a card uniformly. excludeID is a best-effort hint: when
// excluding it would leave nothing, the full list is used instead.
func DrawRandom(cards []domain.Card, excludeID string, src rng.Source) (domain.Card, error) {
	if len(cards) == 0 {
		return domain.Card{}, domain.ErrEmptyDeck
	}
	if src == nil {
		src = rng.Default()
	}

	pool := cards
	if excludeID != "" {
		filtered := make([]domain.Card, 0, len(cards))
		for _, c := range cards {
			if c.ID != excludeID {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}
	return rng.Pick(src, pool), nil
}

// DrawSingle picks one card from cards, leaving out the always-include suit
// unless includeAlways is set.
func DrawSingle(cards []domain.Card, alwaysSuit string, includeAlways bool, src rng.Source) (domain.Card, error) {
	if includeAlways || alwaysSuit == "" {
		return DrawRandom(cards, "", src)
	}
	var rest []domain.Card
	for _, c := range cards {
		if c.Suit != alwaysSuit {
			rest = append(rest, c)
		}
	}
	if len(rest) == 0 {
		return domain.Card{}, domain.ErrNoCardsAvailable
	}
	return DrawRandom(rest, "", src)
}

package catalog

import (
	"maps"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// Assemble combines a base deck with extra cards, such as imported or custom
// prompts. Suits of extra cards are appended in order of first appearance.
// Cards whose id is already present are skipped.
func Assemble(base domain.Deck, extra ...[]domain.Card) domain.Deck {
	deck := domain.Deck{
		Name:          base.Name,
		Suits:         append([]string(nil), base.Suits...),
		Cards:         append([]domain.Card(nil), base.Cards...),
		AlwaysInclude: base.AlwaysInclude,
		SuitNames:     maps.Clone(base.SuitNames),
	}

	ids := make(map[string]bool, len(deck.Cards))
	for _, c := range deck.Cards {
		ids[c.ID] = true
	}

	for _, cards := range extra {
		for _, c := range cards {
			if ids[c.ID] {
				continue
			}
			ids[c.ID] = true
			if !deck.HasSuit(c.Suit) {
				deck.Suits = append(deck.Suits, c.Suit)
			}
			deck.Cards = append(deck.Cards, c)
		}
	}
	return deck
}

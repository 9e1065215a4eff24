// Package draw implements the one-card-per-suit draw used by improv mode,
// along with targeted rerolls and plain random draws.
package draw

import (
	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/rng"
)

// Drawer draws from a fixed catalog of cards.
type Drawer struct {
	cards      []domain.Card
	alwaysSuit string
	src        rng.Source
}

// New creates a Drawer over cards. alwaysSuit names the always-include
// category and may be empty. A nil src uses rng.Default().
func New(cards []domain.Card, alwaysSuit string, src rng.Source) *Drawer {
	if src == nil {
		src = rng.Default()
	}
	return &Drawer{cards: cards, alwaysSuit: alwaysSuit, src: src}
}

// FromDeck creates a Drawer over a deck's cards and always-include suit.
func FromDeck(deck domain.Deck, src rng.Source) *Drawer {
	return New(deck.Cards, deck.AlwaysInclude, src)
}

// Selectable returns the non-always-include cards allowed by settings.
func (d *Drawer) Selectable(settings domain.Settings) []domain.Card {
	allowed := make(map[string]bool, len(settings.AllowedSuits))
	for _, s := range settings.AllowedSuits {
		allowed[s] = true
	}
	var out []domain.Card
	for _, c := range d.cards {
		if d.isAlways(c) || !allowed[c.Suit] {
			continue
		}
		if c.HasLevel(settings.AllowedLevels) {
			out = append(out, c)
		}
	}
	return out
}

// AlwaysCards returns every card of the always-include category.
func (d *Drawer) AlwaysCards() []domain.Card {
	var out []domain.Card
	for _, c := range d.cards {
		if d.isAlways(c) {
			out = append(out, c)
		}
	}
	return out
}

func (d *Drawer) isAlways(c domain.Card) bool {
	return d.alwaysSuit != "" && c.Suit == d.alwaysSuit
}

// DrawCards draws one card from each of up to settings.TechnicalCount
// distinct suits, preceded by an always-include card when enabled.
// The count is clamped to the number of suits available.
func (d *Drawer) DrawCards(settings domain.Settings) ([]domain.Card, error) {
	selectable := d.Selectable(settings)
	if len(selectable) == 0 {
		return nil, domain.ErrNoCardsAvailable
	}

	picks := d.pickPerSuit(selectable, settings.TechnicalCount, nil)

	if settings.IncludeAlways {
		if always := d.AlwaysCards(); len(always) > 0 {
			picks = append([]domain.Card{rng.Pick(d.src, always)}, picks...)
		}
	}
	return picks, nil
}

// pickPerSuit shuffles the suits present in cards and takes one card from
// each of the first n. Cards whose id is in avoid are skipped unless the
// suit has nothing else.
func (d *Drawer) pickPerSuit(cards []domain.Card, n int, avoid map[string]bool) []domain.Card {
	bySuit, suits := groupBySuit(cards)
	suits = rng.Shuffle(d.src, suits)
	n = max(0, min(n, len(suits)))

	picks := make([]domain.Card, 0, n)
	for _, suit := range suits[:n] {
		candidates := bySuit[suit]
		var fresh []domain.Card
		for _, c := range candidates {
			if !avoid[c.ID] {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		}
		picks = append(picks, rng.Pick(d.src, candidates))
	}
	return picks
}

// GroupBySuit groups cards by suit, preserving card order within each suit.
func GroupBySuit(cards []domain.Card) map[string][]domain.Card {
	bySuit, _ := groupBySuit(cards)
	return bySuit
}

// groupBySuit also returns the suits in order of first appearance so that
// shuffling is reproducible for a given source.
func groupBySuit(cards []domain.Card) (map[string][]domain.Card, []string) {
	bySuit := make(map[string][]domain.Card)
	var suits []string
	for _, c := range cards {
		if _, ok := bySuit[c.Suit]; !ok {
			suits = append(suits, c.Suit)
		}
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	return bySuit, suits
}

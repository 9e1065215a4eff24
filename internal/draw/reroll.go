package draw

import (
	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/rng"
)

// RerollAlwaysInclude replaces the always-include card in current with a
// different one from the same category. The other cards are kept in order.
func (d *Drawer) RerollAlwaysInclude(current []domain.Card) ([]domain.Card, error) {
	all := d.AlwaysCards()
	if len(all) <= 1 {
		return nil, domain.ErrNotEnoughCards
	}

	var currentID string
	rest := make([]domain.Card, 0, len(current))
	for _, c := range current {
		if d.isAlways(c) {
			currentID = c.ID
			continue
		}
		rest = append(rest, c)
	}

	candidates := make([]domain.Card, 0, len(all))
	for _, c := range all {
		if c.ID != currentID {
			candidates = append(candidates, c)
		}
	}

	// duplicate ids in a hand-built catalog can leave nothing to swap in
	if len(candidates) == 0 {
		return nil, domain.ErrNotEnoughCards
	}
	return append([]domain.Card{rng.Pick(d.src, candidates)}, rest...), nil
}

// RerollSuitCards redraws the technical cards of current over freshly
// shuffled suits, preferring cards not already shown. The always-include
// card, if present, is kept first.
func (d *Drawer) RerollSuitCards(current []domain.Card, settings domain.Settings) ([]domain.Card, error) {
	var always *domain.Card
	var technical []domain.Card
	for i, c := range current {
		if d.isAlways(c) {
			if always == nil {
				always = &current[i]
			}
			continue
		}
		technical = append(technical, c)
	}

	selectable := d.Selectable(settings)
	if len(selectable) <= len(technical) {
		return nil, domain.ErrNotEnoughCards
	}

	shown := make(map[string]bool, len(technical))
	for _, c := range technical {
		shown[c.ID] = true
	}

	picks := d.pickPerSuit(selectable, len(technical), shown)
	if always != nil {
		picks = append([]domain.Card{*always}, picks...)
	}
	return picks, nil
}

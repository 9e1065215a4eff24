// Package rotation implements the history-aware suit rotation: recent draws
// lower a suit's weight so neglected suits come up more often.
package rotation

import (
	"math"
	"time"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/rng"
)

const (
	day = 24 * time.Hour

	cooldownFactor = 0.25
	minWeight      = 0.0001

	copiesPerWeight = 4
	minCopies       = 1
	maxCopies       = 8
)

// SuitDistribution counts the events at or after now - windowDays, per suit.
// Suits with no qualifying events are absent from the result.
func SuitDistribution(history []domain.DrawEvent, windowDays int, now time.Time) map[string]int {
	cutoff := now.Add(-time.Duration(windowDays) * day)
	counts := make(map[string]int)
	for _, e := range history {
		if !e.Timestamp.Before(cutoff) {
			counts[e.Suit]++
		}
	}
	return counts
}

// SuitWeights returns the inverse-frequency weight of every suit in the deck,
// with the cooldown penalty applied to the most recent draw's suit.
func SuitWeights(deck domain.Deck, history []domain.DrawEvent, cfg domain.BiasConfig, now time.Time) map[string]float64 {
	dist := SuitDistribution(history, cfg.WindowDays, now)

	weights := make(map[string]float64, len(deck.Suits))
	for _, s := range deck.Suits {
		weights[s] = 1 / float64(dist[s]+1)
	}

	if cfg.MinSuitCooldown > 0 && len(history) > 0 {
		recent := history[len(history)-1].Suit
		w, ok := weights[recent]
		if !ok {
			w = 1
		}
		weights[recent] = math.Max(minWeight, w*cooldownFactor)
	}
	return weights
}

// copies converts a weight into the number of pool entries for one card.
func copies(w float64) int {
	n := int(math.Round(w * copiesPerWeight))
	return max(minCopies, min(maxCopies, n))
}

// Pool replicates each card by its suit weight. Cards of undeclared suits
// count with weight 1.
func Pool(deck domain.Deck, weights map[string]float64) []domain.Card {
	var pool []domain.Card
	for _, c := range deck.Cards {
		w, ok := weights[c.Suit]
		if !ok {
			w = 1
		}
		for range copies(w) {
			pool = append(pool, c)
		}
	}
	return pool
}

// DrawBiasedCard picks a card, favouring suits drawn least within the window.
// A deck without cards returns domain.ErrEmptyDeck.
func DrawBiasedCard(deck domain.Deck, history []domain.DrawEvent, cfg domain.BiasConfig, now time.Time, src rng.Source) (domain.Card, error) {
	if len(deck.Cards) == 0 {
		return domain.Card{}, domain.ErrEmptyDeck
	}
	if src == nil {
		src = rng.Default()
	}

	pool := Pool(deck, SuitWeights(deck, history, cfg, now))
	if len(pool) == 0 {
		return rng.Pick(src, deck.Cards), nil
	}
	return rng.Pick(src, pool), nil
}

package rotation

import (
	"errors"
	"testing"
	"time"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/rng"
)

func testDeck() domain.Deck {
	return domain.Deck{
		Name:  "test",
		Suits: []string{"tone", "rhythm", "phrasing"},
		Cards: []domain.Card{
			{ID: "tone-1", Suit: "tone", Title: "Tone Card 1"},
			{ID: "tone-2", Suit: "tone", Title: "Tone Card 2"},
			{ID: "rhythm-1", Suit: "rhythm", Title: "Rhythm Card 1"},
			{ID: "rhythm-2", Suit: "rhythm", Title: "Rhythm Card 2"},
			{ID: "phrasing-1", Suit: "phrasing", Title: "Phrasing Card 1"},
			{ID: "phrasing-2", Suit: "phrasing", Title: "Phrasing Card 2"},
		},
	}
}

func event(suit string, at time.Time) domain.DrawEvent {
	return domain.DrawEvent{CardID: suit + "-1", Suit: suit, Timestamp: at}
}

func drawCounts(t *testing.T, deck domain.Deck, history []domain.DrawEvent, cfg domain.BiasConfig, now time.Time, n int) map[string]int {
	t.Helper()
	src := rng.NewSeeded(1234)
	counts := make(map[string]int)
	for range n {
		card, err := DrawBiasedCard(deck, history, cfg, now, src)
		if err != nil {
			t.Fatalf("DrawBiasedCard returned an unexpected error: %v", err)
		}
		counts[card.Suit]++
	}
	return counts
}

func TestSuitDistribution(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("counts recent events", func(t *testing.T) {
		history := []domain.DrawEvent{
			event("tone", now.Add(-day)),
			event("tone", now.Add(-day)),
			event("rhythm", now.Add(-2*day)),
		}
		dist := SuitDistribution(history, 7, now)
		if dist["tone"] != 2 || dist["rhythm"] != 1 {
			t.Errorf("Unexpected distribution: %v", dist)
		}
		if _, ok := dist["phrasing"]; ok {
			t.Error("Expected suits without draws to be absent")
		}
	})

	t.Run("window boundary", func(t *testing.T) {
		cutoff := now.Add(-7 * day)
		history := []domain.DrawEvent{
			event("tone", cutoff.Add(-time.Millisecond)),
			event("rhythm", cutoff),
			event("phrasing", cutoff.Add(time.Millisecond)),
		}
		dist := SuitDistribution(history, 7, now)
		if _, ok := dist["tone"]; ok {
			t.Error("Expected the event just before the cutoff to be excluded")
		}
		if dist["rhythm"] != 1 {
			t.Error("Expected the event exactly at the cutoff to be included")
		}
		if dist["phrasing"] != 1 {
			t.Error("Expected the event after the cutoff to be included")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		if dist := SuitDistribution(nil, 14, now); len(dist) != 0 {
			t.Errorf("Expected empty distribution, got %v", dist)
		}
	})
}

func TestCopies(t *testing.T) {
	testCases := []struct {
		w    float64
		want int
	}{
		{1, 4},
		{0.5, 2},
		{0.2, 1},
		{0.0001, 1},
		{3, 8},
	}
	for _, tc := range testCases {
		if got := copies(tc.w); got != tc.want {
			t.Errorf("copies(%v) = %d, want %d", tc.w, got, tc.want)
		}
	}
}

func TestSuitWeightsCooldown(t *testing.T) {
	now := time.Now()
	deck := testDeck()
	history := []domain.DrawEvent{event("rhythm", now.Add(-time.Hour)), event("tone", now.Add(-time.Minute))}

	w := SuitWeights(deck, history, domain.BiasConfig{WindowDays: 14, MinSuitCooldown: 1}, now)
	if w["tone"] != 0.125 {
		t.Errorf("Expected the most recent suit to be penalised to 0.125, got %v", w["tone"])
	}
	if w["rhythm"] != 0.5 {
		t.Errorf("Expected rhythm weight 0.5, got %v", w["rhythm"])
	}
	if w["phrasing"] != 1 {
		t.Errorf("Expected untouched suit weight 1, got %v", w["phrasing"])
	}

	var many []domain.DrawEvent
	for range 100000 {
		many = append(many, event("tone", now))
	}
	w = SuitWeights(deck, many, domain.BiasConfig{WindowDays: 14, MinSuitCooldown: 1}, now)
	if w["tone"] != minWeight {
		t.Errorf("Expected cooldown weight floored at %v, got %v", minWeight, w["tone"])
	}
}

func TestDrawBiasedCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deck := testDeck()

	t.Run("returns a card from the deck", func(t *testing.T) {
		card, err := DrawBiasedCard(deck, nil, domain.BiasConfig{WindowDays: 14}, now, rng.NewSeeded(1))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		found := false
		for _, c := range deck.Cards {
			if c.ID == card.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("Card %q is not in the deck", card.ID)
		}
	})

	t.Run("biases away from recently drawn suits", func(t *testing.T) {
		history := []domain.DrawEvent{
			event("tone", now.Add(-1*time.Second)),
			event("tone", now.Add(-2*time.Second)),
			event("tone", now.Add(-3*time.Second)),
			event("tone", now.Add(-4*time.Second)),
		}
		counts := drawCounts(t, deck, history, domain.BiasConfig{WindowDays: 1}, now, 2000)
		if counts["tone"] >= counts["rhythm"] || counts["tone"] >= counts["phrasing"] {
			t.Errorf("Expected tone to be drawn least, got %v", counts)
		}
	})

	t.Run("cooldown lowers the most recent suit", func(t *testing.T) {
		history := []domain.DrawEvent{event("tone", now.Add(-time.Second))}
		const n = 3000

		with := drawCounts(t, deck, history, domain.BiasConfig{WindowDays: 14, MinSuitCooldown: 1}, now, n)
		without := drawCounts(t, deck, history, domain.BiasConfig{WindowDays: 14}, now, n)

		if with["tone"] >= with["rhythm"] || with["tone"] >= with["phrasing"] {
			t.Errorf("Expected tone below each other suit with cooldown, got %v", with)
		}
		if float64(with["tone"]) >= n/3.0 {
			t.Errorf("Expected tone below the equal-weight baseline, got %d of %d", with["tone"], n)
		}
		if with["tone"] >= without["tone"] {
			t.Errorf("Expected cooldown to lower tone: with=%d without=%d", with["tone"], without["tone"])
		}
	})

	t.Run("promotes neglected suits", func(t *testing.T) {
		history := []domain.DrawEvent{
			event("tone", now.Add(-5*day)),
			event("tone", now.Add(-5*day)),
			event("rhythm", now.Add(-1*time.Second)),
			event("rhythm", now.Add(-2*time.Second)),
		}
		counts := drawCounts(t, deck, history, domain.BiasConfig{WindowDays: 3}, now, 2000)
		if counts["rhythm"] >= counts["tone"] || counts["rhythm"] >= counts["phrasing"] {
			t.Errorf("Expected rhythm to be drawn least, got %v", counts)
		}
	})

	t.Run("empty deck", func(t *testing.T) {
		_, err := DrawBiasedCard(domain.Deck{}, nil, domain.BiasConfig{WindowDays: 14}, now, nil)
		if !errors.Is(err, domain.ErrEmptyDeck) {
			t.Errorf("Expected ErrEmptyDeck, got %v", err)
		}
	})

	t.Run("undeclared suit still drawable", func(t *testing.T) {
		d := domain.Deck{Suits: []string{"tone"}, Cards: []domain.Card{{ID: "x", Suit: "other"}}}
		card, err := DrawBiasedCard(d, nil, domain.BiasConfig{WindowDays: 14}, now, rng.NewSeeded(3))
		if err != nil || card.ID != "x" {
			t.Errorf("Expected card x, got %+v err=%v", card, err)
		}
	})
}

func TestBalance(t *testing.T) {
	now := time.Now()
	deck := testDeck()
	deck.Suits = append(deck.Suits, "custom")
	deck.SuitNames = map[string]string{"tone": "Tone"}
	history := []domain.DrawEvent{
		event("tone", now),
		event("tone", now),
		event("rhythm", now),
		event("rhythm", now),
		event("tone", now.Add(-30*day)),
	}

	rows := Balance(deck, history, 14, now)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows (custom has no cards or draws), got %d", len(rows))
	}
	if rows[0].Suit != "tone" || rows[0].Count != 2 || rows[0].Share != 0.5 {
		t.Errorf("Unexpected tone row: %+v", rows[0])
	}
	if rows[0].Name != "Tone" || rows[1].Name != "rhythm" {
		t.Errorf("Expected display names with id fallback, got %q and %q", rows[0].Name, rows[1].Name)
	}
	if rows[2].Suit != "phrasing" || rows[2].Count != 0 || rows[2].Share != 0 {
		t.Errorf("Unexpected phrasing row: %+v", rows[2])
	}
}

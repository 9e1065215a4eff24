package rotation

import (
	"time"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// SuitBalance is one row of the balance report.
type SuitBalance struct {
	Suit  string  `json:"suit"`
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Balance reports recent draw counts per deck suit. Suits without cards and
// without recent draws are left out.
func Balance(deck domain.Deck, history []domain.DrawEvent, windowDays int, now time.Time) []SuitBalance {
	dist := SuitDistribution(history, windowDays, now)

	total := 0
	for _, n := range dist {
		total += n
	}

	hasCards := make(map[string]bool)
	for _, c := range deck.Cards {
		hasCards[c.Suit] = true
	}

	var rows []SuitBalance
	for _, s := range deck.Suits {
		count := dist[s]
		if count == 0 && !hasCards[s] {
			continue
		}
		row := SuitBalance{Suit: s, Name: deck.SuitName(s), Count: count}
		if total > 0 {
			row.Share = float64(count) / float64(total)
		}
		rows = append(rows, row)
	}
	return rows
}

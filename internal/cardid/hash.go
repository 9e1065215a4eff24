package cardid

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// Prefix marks ids derived from imported prompt content.
const Prefix = "src-"

// idLength is the number of hex characters kept from the digest.
const idLength = 12

// Normalize concatenates the card's suit, title and description after
// trimming, lowercasing and normalizing line endings of each part.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	// Joined with newlines so adjacent fields cannot run together.
	return strings.Join([]string{
		normalizePart(card.Suit),
		normalizePart(card.Title),
		normalizePart(card.Description),
	}, "\n")
}

// Hash returns the full SHA-256 hex digest of the normalized card.
func Hash(card domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return fmt.Sprintf("%x", sum)
}

// ID returns the stable card id for imported content.
func ID(card domain.Card) string {
	return Prefix + Hash(card)[:idLength]
}

package domain

import "time"

// CustomSuit is the pseudo-suit that user-authored prompts belong to.
const CustomSuit = "custom"

// Card represents a single drawable prompt.
type Card struct {
	ID          string  `json:"id" yaml:"id" validate:"required"`
	Suit        string  `json:"suit" yaml:"suit" validate:"required"`
	Title       string  `json:"title" yaml:"title" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description"`
	Level       *string `json:"level" yaml:"level"` // nil when the card has no difficulty tag
	IsCustom    bool    `json:"isCustom,omitempty" yaml:"-"`
}

// HasLevel reports whether the card carries one of the given levels.
// Cards without a level never match.
func (c Card) HasLevel(levels []string) bool {
	if c.Level == nil {
		return false
	}
	for _, l := range levels {
		if l == *c.Level {
			return true
		}
	}
	return false
}

// Suit is catalog metadata for a card category.
type Suit struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name"`
}

// Deck is a named collection of cards and the suits they are organized into.
type Deck struct {
	Name  string   `json:"name"`
	Suits []string `json:"suits"`
	Cards []Card   `json:"cards"`

	// AlwaysInclude names the suit drawn once on top of every multi-card
	// draw. Empty when the deck has no such category.
	AlwaysInclude string `json:"alwaysInclude,omitempty"`

	// SuitNames maps suit ids to display names. Suits may be missing.
	SuitNames map[string]string `json:"suitNames,omitempty"`
}

// SuitName returns the display name of suit, or the id when it has none.
func (d Deck) SuitName(suit string) string {
	if name := d.SuitNames[suit]; name != "" {
		return name
	}
	return suit
}

// HasSuit reports whether suit is declared in the deck.
func (d Deck) HasSuit(suit string) bool {
	for _, s := range d.Suits {
		if s == suit {
			return true
		}
	}
	return false
}

// CardsInSuit returns the deck's cards belonging to suit, in deck order.
func (d Deck) CardsInSuit(suit string) []Card {
	var out []Card
	for _, c := range d.Cards {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks that suits and card ids are unique and that every card's
// suit is declared.
func (d Deck) Validate() error {
	seen := make(map[string]bool, len(d.Suits))
	for _, s := range d.Suits {
		if seen[s] {
			return &DeckError{Deck: d.Name, Reason: "duplicate suit " + s}
		}
		seen[s] = true
	}
	ids := make(map[string]bool, len(d.Cards))
	for _, c := range d.Cards {
		if ids[c.ID] {
			return &DeckError{Deck: d.Name, Reason: "duplicate card id " + c.ID}
		}
		ids[c.ID] = true
		if !seen[c.Suit] {
			return &DeckError{Deck: d.Name, Reason: "card " + c.ID + " has undeclared suit " + c.Suit}
		}
	}
	return nil
}

// DrawEvent records a single draw. Events are append-only.
type DrawEvent struct {
	CardID    string    `json:"cardId"`
	Suit      string    `json:"suit"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDrawEvent creates the history record for drawing card at t.
func NewDrawEvent(card Card, t time.Time) DrawEvent {
	return DrawEvent{CardID: card.ID, Suit: card.Suit, Timestamp: t}
}

// BiasConfig tunes the weighted draw.
type BiasConfig struct {
	WindowDays int `json:"windowDays"`
	// MinSuitCooldown enables the most-recent-suit penalty when > 0.
	MinSuitCooldown int `json:"minSuitCooldown,omitempty"`
}

// Settings select which cards a multi-card draw may use.
type Settings struct {
	AllowedSuits   []string `json:"allowedSuits"`
	AllowedLevels  []string `json:"allowedLevels"`
	TechnicalCount int      `json:"technicalCount"`
	IncludeAlways  bool     `json:"includeAlways"`
}

// CustomPrompt is a user-authored prompt.
type CustomPrompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required,max=100"`
	Body      string    `json:"body,omitempty" validate:"max=500"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Card converts the prompt into a card of the custom suit.
func (p CustomPrompt) Card() Card {
	return Card{
		ID:          p.ID,
		Suit:        CustomSuit,
		Title:       p.Title,
		Description: p.Body,
		IsCustom:    true,
	}
}

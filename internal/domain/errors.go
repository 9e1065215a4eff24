package domain

import (
	"errors"
	"strings"
)

var (
	ErrNoCardsAvailable = errors.New("no cards available with current settings")
	ErrNotEnoughCards   = errors.New("not enough different cards available for reroll")
	ErrEmptyDeck        = errors.New("deck has no cards")
	ErrInvalidDeck      = errors.New("invalid deck")
	ErrPromptNotFound   = errors.New("custom prompt not found")
	ErrSourceNotFound   = errors.New("source not found")
	ErrUnknownCard      = errors.New("unknown card")
	ErrValidation       = errors.New("validation failed")
)

// DeckError describes a catalog invariant violation.
type DeckError struct {
	Deck   string
	Reason string
}

func (e *DeckError) Error() string {
	return "deck " + e.Deck + ": " + e.Reason
}

func (e *DeckError) Unwrap() error { return ErrInvalidDeck }

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

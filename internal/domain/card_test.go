package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestDeckValidate(t *testing.T) {
	testCases := []struct {
		name    string
		deck    Deck
		wantErr bool
	}{
		{
			name: "Valid deck",
			deck: Deck{
				Name:  "ok",
				Suits: []string{"tone", "rhythm"},
				Cards: []Card{{ID: "t1", Suit: "tone"}, {ID: "r1", Suit: "rhythm"}},
			},
		},
		{
			name:    "Duplicate suit",
			deck:    Deck{Name: "dup", Suits: []string{"tone", "tone"}},
			wantErr: true,
		},
		{
			name: "Undeclared suit",
			deck: Deck{
				Name:  "undeclared",
				Suits: []string{"tone"},
				Cards: []Card{{ID: "r1", Suit: "rhythm"}},
			},
			wantErr: true,
		},
		{
			name: "Duplicate card id",
			deck: Deck{
				Name:  "dup-id",
				Suits: []string{"mood"},
				Cards: []Card{{ID: "x", Suit: "mood"}, {ID: "x", Suit: "mood"}},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.deck.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDeck) {
					t.Fatalf("Expected ErrInvalidDeck, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestHasLevel(t *testing.T) {
	beginner := "beginner"
	card := Card{ID: "a", Suit: "form", Level: &beginner}

	if !card.HasLevel([]string{"advanced", "beginner"}) {
		t.Error("Expected card to match its own level")
	}
	if card.HasLevel([]string{"advanced"}) {
		t.Error("Expected card not to match a different level")
	}
	if (Card{ID: "b", Suit: "mood"}).HasLevel([]string{"beginner"}) {
		t.Error("Expected a card without a level never to match")
	}
}

func TestValidateCustomPrompt(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := Validate(CustomPrompt{Title: "Slow scales"}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		err := Validate(CustomPrompt{})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Expected ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "Title is required") {
			t.Errorf("Unexpected message: %v", err)
		}
	})

	t.Run("body too long", func(t *testing.T) {
		err := Validate(CustomPrompt{Title: "x", Body: strings.Repeat("b", 501)})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Expected ErrValidation, got %v", err)
		}
	})
}

func TestCustomPromptCard(t *testing.T) {
	card := CustomPrompt{ID: "custom-1", Title: "Drone", Body: "Play against a drone"}.Card()
	if card.Suit != CustomSuit || !card.IsCustom {
		t.Errorf("Expected a custom card, got %+v", card)
	}
	if card.Description != "Play against a drone" {
		t.Errorf("Expected body to become the description, got %q", card.Description)
	}
}

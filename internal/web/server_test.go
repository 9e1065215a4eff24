package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/practice"
	"github.com/conorfennell/promptdeck/internal/rng"
	"github.com/conorfennell/promptdeck/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc, err := practice.New(db, practice.Options{
		Bias: domain.BiasConfig{WindowDays: 14, MinSuitCooldown: 1},
		Settings: domain.Settings{
			AllowedSuits:   []string{"form", "time", "pitch", "position"},
			AllowedLevels:  []string{"beginner", "intermediate", "advanced"},
			TechnicalCount: 1,
			IncludeAlways:  true,
		},
		Rand: rng.NewSeeded(42),
	})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return NewServer(svc)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestPracticeDrawAndHistory(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/practice/draw", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 but got %d: %s", rec.Code, rec.Body.String())
	}
	var card domain.Card
	if err := json.NewDecoder(rec.Body).Decode(&card); err != nil {
		t.Fatalf("Failed to decode card: %v", err)
	}

	rec = do(t, s, http.MethodGet, "/practice/history", "")
	var events []domain.DrawEvent
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(events) != 1 || events[0].CardID != card.ID {
		t.Errorf("Expected history to hold the drawn card, got %+v", events)
	}

	if rec := do(t, s, http.MethodDelete, "/practice/history", ""); rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 but got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/practice/balance", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 but got %d", rec.Code)
	}
}

func TestImprovRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/improv/draw", `{"technicalCount": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 but got %d: %s", rec.Code, rec.Body.String())
	}
	var cards []domain.Card
	if err := json.NewDecoder(rec.Body).Decode(&cards); err != nil {
		t.Fatalf("Failed to decode cards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("Expected 3 cards, got %d", len(cards))
	}

	body := fmt.Sprintf(`{"cardIds": ["%s", "%s", "%s"]}`, cards[0].ID, cards[1].ID, cards[2].ID)
	if rec := do(t, s, http.MethodPost, "/improv/reroll/always", body); rec.Code != http.StatusOK {
		t.Errorf("reroll always: expected status 200 but got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/improv/reroll/suits", body); rec.Code != http.StatusOK {
		t.Errorf("reroll suits: expected status 200 but got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/improv/draw/single", ""); rec.Code != http.StatusOK {
		t.Errorf("single: expected status 200 but got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"no cards available", http.MethodPost, "/improv/draw", `{"allowedSuits": []}`, http.StatusBadRequest},
		{"not enough cards", http.MethodPost, "/improv/reroll/suits", `{"cardIds": ["one-note"], "allowedSuits": ["pitch"], "allowedLevels": ["advanced"]}`, http.StatusConflict},
		{"unknown card", http.MethodPost, "/improv/reroll/always", `{"cardIds": ["nope"]}`, http.StatusNotFound},
		{"invalid prompt", http.MethodPost, "/prompts", `{"title": ""}`, http.StatusBadRequest},
		{"missing prompt", http.MethodDelete, "/prompts/custom-missing", "", http.StatusNotFound},
		{"missing source", http.MethodDelete, "/sources/99", "", http.StatusNotFound},
		{"bad source id", http.MethodDelete, "/sources/abc", "", http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/prompts", `{`, http.StatusBadRequest},
		{"no syncer", http.MethodPost, "/sync", "", http.StatusServiceUnavailable},
		{"wrong method", http.MethodPatch, "/prompts", "", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Errorf("Expected status %d but got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPromptLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/prompts", `{"title": "Drone", "body": "Tune to a drone"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 but got %d: %s", rec.Code, rec.Body.String())
	}
	var p domain.CustomPrompt
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("Failed to decode prompt: %v", err)
	}

	rec = do(t, s, http.MethodPut, "/prompts/"+p.ID, `{"title": "Drone work"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 but got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/deck", "")
	var deck domain.Deck
	if err := json.NewDecoder(rec.Body).Decode(&deck); err != nil {
		t.Fatalf("Failed to decode deck: %v", err)
	}
	if len(deck.CardsInSuit(domain.CustomSuit)) != 1 {
		t.Errorf("Expected the custom prompt in the deck, suits=%v", deck.Suits)
	}

	if rec := do(t, s, http.MethodDelete, "/prompts/"+p.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 but got %d", rec.Code)
	}
}

func TestGetDeckModes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/deck?mode=improv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 but got %d", rec.Code)
	}
	var deck domain.Deck
	if err := json.NewDecoder(rec.Body).Decode(&deck); err != nil {
		t.Fatalf("Failed to decode deck: %v", err)
	}
	if deck.AlwaysInclude != "mood" || deck.SuitNames["mood"] == "" {
		t.Errorf("Expected the improv deck with suit names, got %q %v", deck.AlwaysInclude, deck.SuitNames)
	}

	if rec := do(t, s, http.MethodGet, "/deck?mode=jazz", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 but got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("Expected 500 but got %d", got)
	}
	if got := statusFor(fmt.Errorf("wrapped: %w", domain.ErrNotEnoughCards)); got != http.StatusConflict {
		t.Errorf("Expected 409 but got %d", got)
	}
}

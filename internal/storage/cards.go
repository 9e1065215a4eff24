package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// InsertCard stores a card imported from a source.
func (db *DB) InsertCard(ctx context.Context, card domain.Card, sourceID int64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (id, suit, title, description, level, source_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		card.Suit,
		card.Title,
		card.Description,
		nullString(card.Level),
		sourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// FindCardByID retrieves an imported card. It returns nil when absent.
func (db *DB) FindCardByID(ctx context.Context, id string) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, suit, title, description, level
		FROM cards WHERE id = ?
	`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return &card, nil
}

// GetCardsBySourceID retrieves all cards imported from a specific source.
func (db *DB) GetCardsBySourceID(ctx context.Context, sourceID int64) ([]domain.Card, error) {
	return db.queryCards(ctx, `
		SELECT id, suit, title, description, level
		FROM cards WHERE source_id = ? ORDER BY rowid
	`, sourceID)
}

// AllCards returns every imported card.
func (db *DB) AllCards(ctx context.Context) ([]domain.Card, error) {
	return db.queryCards(ctx, `
		SELECT id, suit, title, description, level
		FROM cards ORDER BY source_id, rowid
	`)
}

// DeleteCardByID removes an imported card.
func (db *DB) DeleteCardByID(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}

func (db *DB) queryCards(ctx context.Context, query string, args ...any) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func scanCard(s scanner) (domain.Card, error) {
	var c domain.Card
	var level sql.NullString
	if err := s.Scan(&c.ID, &c.Suit, &c.Title, &c.Description, &level); err != nil {
		return c, err
	}
	if level.Valid {
		c.Level = &level.String
	}
	return c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// GetHistory returns every draw event in the order it was appended.
func (db *DB) GetHistory(ctx context.Context) ([]domain.DrawEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT card_id, suit, drawn_at
		FROM draw_events ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var events []domain.DrawEvent
	for rows.Next() {
		var e domain.DrawEvent
		var ms int64
		if err := rows.Scan(&e.CardID, &e.Suit, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan draw event row: %w", err)
		}
		e.Timestamp = fromMillis(ms)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return events, nil
}

// Append records a draw event.
func (db *DB) Append(ctx context.Context, e domain.DrawEvent) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO draw_events (card_id, suit, drawn_at)
		VALUES (?, ?, ?)
	`, e.CardID, e.Suit, toMillis(e.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to append draw event for card %s: %w", e.CardID, err)
	}
	return nil
}

// Clear removes the whole draw history.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM draw_events`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

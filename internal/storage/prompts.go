package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// ListPrompts returns all custom prompts, oldest first.
func (db *DB) ListPrompts(ctx context.Context) ([]domain.CustomPrompt, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, body, created_at, updated_at
		FROM custom_prompts ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom prompts: %w", err)
	}
	defer rows.Close()

	var prompts []domain.CustomPrompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read custom prompts: %w", err)
	}
	return prompts, nil
}

// FindPrompt retrieves a custom prompt by id.
func (db *DB) FindPrompt(ctx context.Context, id string) (domain.CustomPrompt, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, title, body, created_at, updated_at
		FROM custom_prompts WHERE id = ?
	`, id)
	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CustomPrompt{}, domain.ErrPromptNotFound
	}
	return p, err
}

// InsertPrompt stores a new custom prompt.
func (db *DB) InsertPrompt(ctx context.Context, p domain.CustomPrompt) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO custom_prompts (id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Body, toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert custom prompt %s: %w", p.ID, err)
	}
	return nil
}

// UpdatePrompt replaces the title and body of an existing prompt.
func (db *DB) UpdatePrompt(ctx context.Context, p domain.CustomPrompt) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE custom_prompts
		SET title = ?, body = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Body, toMillis(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update custom prompt %s: %w", p.ID, err)
	}
	return expectAffected(res, domain.ErrPromptNotFound)
}

// DeletePrompt removes a custom prompt.
func (db *DB) DeletePrompt(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM custom_prompts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom prompt %s: %w", id, err)
	}
	return expectAffected(res, domain.ErrPromptNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrompt(s scanner) (domain.CustomPrompt, error) {
	var p domain.CustomPrompt
	var created, updated int64
	if err := s.Scan(&p.ID, &p.Title, &p.Body, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan custom prompt row: %w", err)
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

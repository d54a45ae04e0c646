package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mixelka/emaildraft/pkg/models"
)

// DefaultHistoryLimit caps ListGenerations when no limit is given
const DefaultHistoryLimit = 50

// RecordGeneration stores a generation record
func (db *DB) RecordGeneration(ctx context.Context, rec *models.GenerationRecord) error {
	query := `
		INSERT OR IGNORE INTO generations (id, created_at, sender_name, recipient_name, subject, tone, length, attachment_count, state, error_kind, error_message, prompt_chars, body_chars, duration_ms)
		VALUES (:id, :created_at, :sender_name, :recipient_name, :subject, :tone, :length, :attachment_count, :state, :error_kind, :error_message, :prompt_chars, :body_chars, :duration_ms)
	`
	result, err := db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetGeneration returns a generation record by ID
func (db *DB) GetGeneration(ctx context.Context, id string) (*models.GenerationRecord, error) {
	var rec models.GenerationRecord
	err := db.GetContext(ctx, &rec, `SELECT * FROM generations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	return &rec, nil
}

// ListGenerations returns the most recent generation records, newest first
func (db *DB) ListGenerations(ctx context.Context, limit int) ([]*models.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var records []*models.GenerationRecord
	query := `SELECT * FROM generations ORDER BY created_at DESC, rowid DESC LIMIT ?`
	if err := db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return records, nil
}

// CountGenerationsByState returns the number of records per terminal state
func (db *DB) CountGenerationsByState(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		State string `db:"state"`
		Count int    `db:"count"`
	}
	query := `SELECT state, COUNT(*) AS count FROM generations GROUP BY state`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.State] = r.Count
	}
	return counts, nil
}

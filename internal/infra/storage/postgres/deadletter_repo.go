package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vietddude/requeue/internal/core/domain"
	"github.com/vietddude/requeue/internal/infra/storage"
)

// DeadLetterRepo implements storage.DeadLetterRepository on PostgreSQL.
type DeadLetterRepo struct {
	db *sql.DB
}

// NewDeadLetterRepo creates a new dead letter repository.
func NewDeadLetterRepo(db *DB) *DeadLetterRepo {
	return &DeadLetterRepo{db: db.DB}
}

func (r *DeadLetterRepo) Add(ctx context.Context, dl *domain.DeadLetter) error {
	headers, err := json.Marshal(dl.Headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}

	query := `
		INSERT INTO dead_letters (id, queue, message_id, payload, headers, reason, error_msg, attempts, abandoned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		dl.ID, dl.Queue, dl.MessageID, dl.Payload, headers,
		dl.Reason, dl.Error, dl.Attempts, dl.AbandonedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dead letter: %w", err)
	}
	return nil
}

func (r *DeadLetterRepo) AddBatch(ctx context.Context, dls []*domain.DeadLetter) error {
	if len(dls) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dead_letters (id, queue, message_id, payload, headers, reason, error_msg, attempts, abandoned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, dl := range dls {
		headers, err := json.Marshal(dl.Headers)
		if err != nil {
			return fmt.Errorf("failed to encode headers: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			dl.ID, dl.Queue, dl.MessageID, dl.Payload, headers,
			dl.Reason, dl.Error, dl.Attempts, dl.AbandonedAt); err != nil {
			return fmt.Errorf("failed to insert dead letter %s: %w", dl.ID, err)
		}
	}

	return tx.Commit()
}

func (r *DeadLetterRepo) List(ctx context.Context, queue string, limit int) ([]*domain.DeadLetter, error) {
	query := `
		SELECT id, queue, message_id, payload, headers, reason, error_msg, attempts, abandoned_at
		FROM dead_letters
		WHERE queue = $1
		ORDER BY abandoned_at ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, queue, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dead letters: %w", err)
	}
	defer rows.Close()

	var res []*domain.DeadLetter
	for rows.Next() {
		var dl domain.DeadLetter
		var headers []byte
		if err := rows.Scan(&dl.ID, &dl.Queue, &dl.MessageID, &dl.Payload, &headers,
			&dl.Reason, &dl.Error, &dl.Attempts, &dl.AbandonedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dead letter: %w", err)
		}
		if len(headers) > 0 {
			if err := json.Unmarshal(headers, &dl.Headers); err != nil {
				return nil, fmt.Errorf("failed to decode headers: %w", err)
			}
		}
		res = append(res, &dl)
	}
	return res, rows.Err()
}

func (r *DeadLetterRepo) Count(ctx context.Context, queue string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT count(*) FROM dead_letters WHERE queue = $1", queue).Scan(&count)
	return count, err
}

func (r *DeadLetterRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM dead_letters WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete dead letter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *DeadLetterRepo) DeleteOlderThan(ctx context.Context, queue string, threshold int64) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM dead_letters WHERE queue = $1 AND abandoned_at < $2", queue, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to prune dead letters: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

package primary

import (
	"context"
	"errors"
	"fmt"

	"podsafe/internal/models"
	"podsafe/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Check Store Implementation ---

const checkColumns = `id, description, keywords, is_for_kids, status, error, provider, created_at`

func (s *StoreImpl) RecordCheck(ctx context.Context, check *models.Check) error {
	keywords := check.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO checks (`+checkColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		check.ID, check.Description, keywords, check.IsForKids, check.Status, check.Error, check.Provider, check.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record check %s: %w", check.ID, err)
	}
	return nil
}

func (s *StoreImpl) GetCheck(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	row := s.db.QueryRow(ctx, `SELECT `+checkColumns+` FROM checks WHERE id = $1`, id)
	check, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get check %s: %w", id, err)
	}
	return check, nil
}

func (s *StoreImpl) ListChecks(ctx context.Context, limit, offset int) ([]*models.Check, error) {
	if limit <= 0 {
		limit = 20 // Default limit
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+checkColumns+` FROM checks ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	checks := []*models.Check{}
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check row: %w", err)
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check rows: %w", err)
	}
	return checks, nil
}

// scanCheck scans a row selected with checkColumns.
func scanCheck(row pgx.Row) (*models.Check, error) {
	c := &models.Check{}
	err := row.Scan(
		&c.ID,
		&c.Description,
		&c.Keywords,
		&c.IsForKids,
		&c.Status,
		&c.Error,
		&c.Provider,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var _ store.CheckStore = (*StoreImpl)(nil)

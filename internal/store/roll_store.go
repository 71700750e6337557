package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/emulsion/internal/domain"
)

const rollColumns = `id, status, order_id, film_stock_name, film_format, expected_exposures,
	film_cost, not_mine, push_pull_stops, notes,
	date_loaded, date_unloaded, chemistry_id, stars, actual_exposures,
	created_at, updated_at`

// RollFilter narrows List. Zero values match everything.
type RollFilter struct {
	Status  *domain.Status
	OrderID string
}

type RollStore struct {
	db *sql.DB
}

func NewRollStore(db *sql.DB) *RollStore {
	return &RollStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoll(row rowScanner) (*domain.Roll, error) {
	r := &domain.Roll{}
	err := row.Scan(
		&r.ID, &r.Status, &r.OrderID, &r.FilmStockName, &r.FilmFormat, &r.ExpectedExposures,
		&r.FilmCost, &r.NotMine, &r.PushPullStops, &r.Notes,
		&r.DateLoaded, &r.DateUnloaded, &r.ChemistryID, &r.Stars, &r.ActualExposures,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a new roll in NEW.
func (s *RollStore) Create(ctx context.Context, d domain.RollDraft) (*domain.Roll, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO film_rolls (id, status, order_id, film_stock_name, film_format, expected_exposures,
			film_cost, not_mine, push_pull_stops, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, domain.StatusNew, strings.TrimSpace(d.OrderID), strings.TrimSpace(d.FilmStockName),
		strings.TrimSpace(d.FilmFormat), d.ExpectedExposures, d.FilmCost, d.NotMine, d.PushPullStops,
		d.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create roll: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RollStore) GetByID(ctx context.Context, id string) (*domain.Roll, error) {
	r, err := scanRoll(s.db.QueryRowContext(ctx, `SELECT `+rollColumns+` FROM film_rolls WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roll: %w", err)
	}
	return r, nil
}

// List returns the matching rolls, newest first.
func (s *RollStore) List(ctx context.Context, f RollFilter) ([]*domain.Roll, error) {
	query := `SELECT ` + rollColumns + ` FROM film_rolls`
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *f.Status)
	}
	if f.OrderID != "" {
		where = append(where, "order_id = ?")
		args = append(args, f.OrderID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rolls: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var rolls []*domain.Roll
	for rows.Next() {
		r, err := scanRoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}
		rolls = append(rolls, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rolls: %w", err)
	}

	return rolls, nil
}

// Update writes every stored column of r and bumps updated_at.
func (s *RollStore) Update(ctx context.Context, r *domain.Roll) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE film_rolls SET
			status = ?, order_id = ?, film_stock_name = ?, film_format = ?, expected_exposures = ?,
			film_cost = ?, not_mine = ?, push_pull_stops = ?, notes = ?,
			date_loaded = ?, date_unloaded = ?, chemistry_id = ?, stars = ?, actual_exposures = ?,
			updated_at = ?
		WHERE id = ?
	`, r.Status, strings.TrimSpace(r.OrderID), strings.TrimSpace(r.FilmStockName), strings.TrimSpace(r.FilmFormat),
		r.ExpectedExposures, r.FilmCost, r.NotMine, r.PushPullStops, r.Notes,
		r.DateLoaded, r.DateUnloaded, r.ChemistryID, r.Stars, r.ActualExposures,
		time.Now().UTC(), r.ID)
	if err != nil {
		return fmt.Errorf("failed to update roll: %w", err)
	}

	return requireAffected(result, "roll")
}

func (s *RollStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM film_rolls WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete roll: %w", err)
	}

	return requireAffected(result, "roll")
}

// CountByChemistry returns how many rolls reference each batch.
func (s *RollStore) CountByChemistry(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chemistry_id, COUNT(*) FROM film_rolls
		WHERE chemistry_id IS NOT NULL
		GROUP BY chemistry_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count rolls by chemistry: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan chemistry count: %w", err)
		}
		counts[id] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chemistry counts: %w", err)
	}

	return counts, nil
}

// CountForChemistry returns how many rolls reference one batch.
func (s *RollStore) CountForChemistry(ctx context.Context, chemistryID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM film_rolls WHERE chemistry_id = ?`, chemistryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count rolls for chemistry: %w", err)
	}
	return n, nil
}

func requireAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}

	return nil
}

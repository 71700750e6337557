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
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vbonduro/emulsion/internal/domain"
)

const chemistryColumns = `id, name, chemistry_type, date_mixed, date_retired,
	developer_cost, fixer_cost, other_cost, rolls_offset, notes, created_at, updated_at`

// ChemistryFilter narrows List. Zero values match everything.
type ChemistryFilter struct {
	ActiveOnly    bool
	ChemistryType domain.ChemistryType
}

type ChemistryStore struct {
	db *sql.DB
}

func NewChemistryStore(db *sql.DB) *ChemistryStore {
	return &ChemistryStore{db: db}
}

func scanBatch(row rowScanner) (*domain.ChemistryBatch, error) {
	b := &domain.ChemistryBatch{}
	err := row.Scan(
		&b.ID, &b.Name, &b.ChemistryType, &b.DateMixed, &b.DateRetired,
		&b.DeveloperCost, &b.FixerCost, &b.OtherCost, &b.RollsOffset, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *ChemistryStore) Create(ctx context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chemistry_batches (id, name, chemistry_type, date_mixed,
			developer_cost, fixer_cost, other_cost, rolls_offset, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, strings.TrimSpace(d.Name), string(d.ChemistryType), d.DateMixed,
		d.DeveloperCost, d.FixerCost, d.OtherCost, d.RollsOffset, d.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create chemistry batch: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ChemistryStore) GetByID(ctx context.Context, id string) (*domain.ChemistryBatch, error) {
	b, err := scanBatch(s.db.QueryRowContext(ctx, `SELECT `+chemistryColumns+` FROM chemistry_batches WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chemistry batch: %w", err)
	}
	return b, nil
}

// List returns matching batches, active ones first, then most recently mixed.
func (s *ChemistryStore) List(ctx context.Context, f ChemistryFilter) ([]*domain.ChemistryBatch, error) {
	query := `SELECT ` + chemistryColumns + ` FROM chemistry_batches`
	var (
		where []string
		args  []any
	)
	if f.ActiveOnly {
		where = append(where, "date_retired IS NULL")
	}
	if f.ChemistryType != "" {
		where = append(where, "chemistry_type = ?")
		args = append(args, string(f.ChemistryType))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_retired IS NOT NULL, date_mixed DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chemistry batches: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var batches []*domain.ChemistryBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chemistry batch: %w", err)
		}
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chemistry batches: %w", err)
	}

	return batches, nil
}

func (s *ChemistryStore) Update(ctx context.Context, b *domain.ChemistryBatch) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE chemistry_batches SET
			name = ?, chemistry_type = ?, date_mixed = ?, date_retired = ?,
			developer_cost = ?, fixer_cost = ?, other_cost = ?, rolls_offset = ?, notes = ?,
			updated_at = ?
		WHERE id = ?
	`, strings.TrimSpace(b.Name), string(b.ChemistryType), b.DateMixed, b.DateRetired,
		b.DeveloperCost, b.FixerCost, b.OtherCost, b.RollsOffset, b.Notes,
		time.Now().UTC(), b.ID)
	if err != nil {
		return fmt.Errorf("failed to update chemistry batch: %w", err)
	}

	return requireAffected(result, "chemistry batch")
}

// Delete removes a batch. A batch still referenced by a roll is refused with
// domain.ErrInUse by the foreign key.
func (s *ChemistryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chemistry_batches WHERE id = ?`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("chemistry batch %s: %w", id, domain.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("failed to delete chemistry batch: %w", err)
	}

	return requireAffected(result, "chemistry batch")
}

func isForeignKeyViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	if serr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	// Primary result code only when extended codes are off.
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), "FOREIGN KEY")
}

// Package board is the client's view of the server: in-memory roll and
// chemistry collections that only change after the server confirms a
// write, and the orchestrator that turns requested status changes into
// those writes.
package board

import (
	"context"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/remote"
)

// RollAPI is the part of the remote API the roll store calls.
type RollAPI interface {
	ListRolls(ctx context.Context, f remote.RollFilter) (*remote.RollPage, error)
	CreateRoll(ctx context.Context, d domain.RollDraft) (*domain.Roll, error)
	UpdateRoll(ctx context.Context, id string, p domain.RollPatch) (*domain.Roll, error)
	DeleteRoll(ctx context.Context, id string) error
	LoadRoll(ctx context.Context, id string, loaded domain.Date) (*domain.Roll, error)
	UnloadRoll(ctx context.Context, id string, unloaded domain.Date) (*domain.Roll, error)
	AssignChemistry(ctx context.Context, id, chemistryID string) (*domain.Roll, error)
	RateRoll(ctx context.Context, id string, stars int, actualExposures *int) (*domain.Roll, error)
}

// ChemistryAPI is the part of the remote API the chemistry store calls.
type ChemistryAPI interface {
	ListChemistry(ctx context.Context, f remote.ChemistryFilter) ([]*domain.ChemistryBatch, error)
	CreateChemistry(ctx context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error)
	UpdateChemistry(ctx context.Context, id string, p domain.ChemistryPatch) (*domain.ChemistryBatch, error)
	DeleteChemistry(ctx context.Context, id string) error
}

// indexOf returns the position of the entry with id, or -1.
func indexOf[T any](items []*T, id string, idOf func(*T) string) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}

// upsert replaces the entry with the same id, or appends when there is none.
func upsert[T any](items []*T, item *T, idOf func(*T) string) []*T {
	if i := indexOf(items, idOf(item), idOf); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/emulsion/internal/db"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/store"
)

type transition struct {
	kind     string
	from, to domain.Status
}

// fakeRecorder remembers what it was told.
type fakeRecorder struct {
	mutations   []string
	transitions []transition
}

func (f *fakeRecorder) Mutation(entity, op string) {
	f.mutations = append(f.mutations, entity+"/"+op)
}

func (f *fakeRecorder) Transition(kind string, from, to domain.Status) {
	f.transitions = append(f.transitions, transition{kind, from, to})
}

type fixture struct {
	rolls     *RollService
	chemistry *ChemistryService
	stats     *StatsService
	recorder  *fakeRecorder
}

func newTestServices(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	rollStore := store.NewRollStore(d)
	chemStore := store.NewChemistryStore(d)
	rec := &fakeRecorder{}
	return &fixture{
		rolls:     NewRollService(rollStore, chemStore, rec, slog.Default()),
		chemistry: NewChemistryService(chemStore, rollStore, rec, slog.Default()),
		stats:     NewStatsService(rollStore, chemStore, slog.Default()),
		recorder:  rec,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) newRoll(t *testing.T, cost string, exposures int) *domain.Roll {
	t.Helper()
	r, err := f.rolls.Create(context.Background(), domain.RollDraft{
		OrderID:           "order-1",
		FilmStockName:     "Kodak Portra 400",
		FilmFormat:        "35mm",
		ExpectedExposures: exposures,
		FilmCost:          dec(cost),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) newBatch(t *testing.T, developer, fixer string) *domain.ChemistryBatch {
	t.Helper()
	b, err := f.chemistry.Create(context.Background(), domain.ChemistryDraft{
		Name:          "Cs41",
		ChemistryType: domain.ChemistryC41,
		DeveloperCost: dec(developer),
		FixerCost:     dec(fixer),
	})
	require.NoError(t, err)
	return b
}

// develop walks r from NEW to DEVELOPED with batch b.
func (f *fixture) develop(t *testing.T, r *domain.Roll, b *domain.ChemistryBatch) *domain.Roll {
	t.Helper()
	ctx := context.Background()
	r, err := f.rolls.Load(ctx, r.ID, domain.NewDate(2024, 5, 1))
	require.NoError(t, err)
	r, err = f.rolls.Unload(ctx, r.ID, domain.NewDate(2024, 5, 20))
	require.NoError(t, err)
	r, err = f.rolls.AssignChemistry(ctx, r.ID, b.ID)
	require.NoError(t, err)
	return r
}

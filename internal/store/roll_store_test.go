package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/emulsion/internal/domain"
)

func TestRollStoreCreate(t *testing.T) {
	store := NewRollStore(openTestDB(t))
	ctx := context.Background()

	roll, err := store.Create(ctx, portraDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, roll.ID)
	assert.Equal(t, domain.StatusNew, roll.Status)
	assert.Equal(t, "Kodak Portra 400", roll.FilmStockName)
	assert.True(t, decimal.RequireFromString("12.50").Equal(roll.FilmCost))
	assert.Nil(t, roll.DateLoaded)
	assert.Nil(t, roll.PushPullStops)
	assert.False(t, roll.CreatedAt.IsZero())
}

func TestRollStoreGetByIDMissing(t *testing.T) {
	store := NewRollStore(openTestDB(t))

	roll, err := store.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, roll)
}

func TestRollStoreUpdateRoundTripsWorkflowFields(t *testing.T) {
	d := openTestDB(t)
	rolls := NewRollStore(d)
	chem := NewChemistryStore(d)
	ctx := context.Background()

	batch, err := chem.Create(ctx, c41Draft())
	require.NoError(t, err)
	roll, err := rolls.Create(ctx, portraDraft())
	require.NoError(t, err)

	loaded := domain.NewDate(2024, 5, 1)
	unloaded := domain.NewDate(2024, 5, 20)
	stars := 4
	shots := 37
	push := decimal.RequireFromString("1.5")
	roll.Status = domain.StatusScanned
	roll.DateLoaded = &loaded
	roll.DateUnloaded = &unloaded
	roll.ChemistryID = &batch.ID
	roll.Stars = &stars
	roll.ActualExposures = &shots
	roll.PushPullStops = &push
	roll.NotMine = true
	roll.Notes = "beach trip"
	require.NoError(t, rolls.Update(ctx, roll))

	got, err := rolls.GetByID(ctx, roll.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusScanned, got.Status)
	assert.True(t, loaded.Equal(*got.DateLoaded))
	assert.True(t, unloaded.Equal(*got.DateUnloaded))
	assert.Equal(t, batch.ID, *got.ChemistryID)
	assert.Equal(t, 4, *got.Stars)
	assert.Equal(t, 37, *got.ActualExposures)
	assert.True(t, push.Equal(*got.PushPullStops))
	assert.True(t, got.NotMine)
	assert.Equal(t, "beach trip", got.Notes)

	got.DateLoaded = nil
	got.DateUnloaded = nil
	got.ChemistryID = nil
	got.Stars = nil
	got.ActualExposures = nil
	got.Status = domain.StatusNew
	require.NoError(t, rolls.Update(ctx, got))

	cleared, err := rolls.GetByID(ctx, roll.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.DateLoaded)
	assert.Nil(t, cleared.ChemistryID)
	assert.Nil(t, cleared.Stars)
}

func TestRollStoreUpdateMissing(t *testing.T) {
	store := NewRollStore(openTestDB(t))

	err := store.Update(context.Background(), &domain.Roll{ID: "nope", Status: domain.StatusNew,
		OrderID: "o", FilmStockName: "s", FilmFormat: "f", ExpectedExposures: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRollStoreList(t *testing.T) {
	store := NewRollStore(openTestDB(t))
	ctx := context.Background()

	first, err := store.Create(ctx, portraDraft())
	require.NoError(t, err)
	other := portraDraft()
	other.OrderID = "order-2"
	second, err := store.Create(ctx, other)
	require.NoError(t, err)

	second.Status = domain.StatusLoaded
	loaded := domain.NewDate(2024, 1, 2)
	second.DateLoaded = &loaded
	require.NoError(t, store.Update(ctx, second))

	all, err := store.List(ctx, RollFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := domain.StatusLoaded
	loadedOnly, err := store.List(ctx, RollFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, loadedOnly, 1)
	assert.Equal(t, second.ID, loadedOnly[0].ID)

	byOrder, err := store.List(ctx, RollFilter{OrderID: "order-1"})
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, first.ID, byOrder[0].ID)
}

func TestRollStoreDelete(t *testing.T) {
	store := NewRollStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, portraDraft())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	retrieved, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)

	assert.True(t, errors.Is(store.Delete(ctx, created.ID), domain.ErrNotFound))
}

func TestRollStoreCountByChemistry(t *testing.T) {
	d := openTestDB(t)
	rolls := NewRollStore(d)
	chem := NewChemistryStore(d)
	ctx := context.Background()

	batch, err := chem.Create(ctx, c41Draft())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r, err := rolls.Create(ctx, portraDraft())
		require.NoError(t, err)
		if i < 2 {
			r.ChemistryID = &batch.ID
			require.NoError(t, rolls.Update(ctx, r))
		}
	}

	counts, err := rolls.CountByChemistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{batch.ID: 2}, counts)

	n, err := rolls.CountForChemistry(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

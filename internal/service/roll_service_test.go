package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/emulsion/internal/domain"
)

func TestRollServiceCreateRoundTrip(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()

	created := f.newRoll(t, "12.00", 36)
	assert.Equal(t, domain.StatusNew, created.Status)
	require.NotNil(t, created.TotalCost)
	assert.True(t, dec("12").Equal(*created.TotalCost))
	assert.Nil(t, created.DevCost)

	got, err := f.rolls.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.FilmStockName, got.FilmStockName)
	assert.True(t, created.FilmCost.Equal(got.FilmCost))
	assert.Equal(t, []string{"roll/create"}, f.recorder.mutations)
}

func TestRollServiceCreateValidates(t *testing.T) {
	f := newTestServices(t)

	_, err := f.rolls.Create(context.Background(), domain.RollDraft{FilmCost: dec("-1")})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "order_id")
	assert.Contains(t, ve.Fields, "film_stock_name")
	assert.Contains(t, ve.Fields, "film_format")
	assert.Contains(t, ve.Fields, "expected_exposures")
	assert.Contains(t, ve.Fields, "film_cost")
}

func TestRollServiceGetMissing(t *testing.T) {
	f := newTestServices(t)

	_, err := f.rolls.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRollServiceForwardTransitions(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	batch := f.newBatch(t, "9", "0")
	r := f.newRoll(t, "12.00", 36)

	r = f.develop(t, r, batch)
	assert.Equal(t, domain.StatusDeveloped, r.Status)
	require.NotNil(t, r.DurationDays)
	assert.Equal(t, 19, *r.DurationDays)
	require.NotNil(t, r.DevCost)
	assert.True(t, dec("9").Equal(*r.DevCost))

	shots := 24
	r, err := f.rolls.Rate(ctx, r.ID, 5, &shots)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScanned, r.Status)
	assert.Equal(t, 5, *r.Stars)
	assert.True(t, dec("21").Equal(*r.TotalCost))
	assert.True(t, dec("0.875").Equal(*r.CostPerShot))

	require.Len(t, f.recorder.transitions, 4)
	assert.Equal(t, transition{"forward", domain.StatusDeveloped, domain.StatusScanned}, f.recorder.transitions[3])
}

func TestRollServiceRateAgainEditsInPlace(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.develop(t, f.newRoll(t, "10", 36), f.newBatch(t, "5", "0"))

	_, err := f.rolls.Rate(ctx, r.ID, 3, nil)
	require.NoError(t, err)
	r, err = f.rolls.Rate(ctx, r.ID, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, *r.Stars)
	assert.Equal(t, domain.StatusScanned, r.Status)
}

func TestRollServiceRejectsSkippingStages(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	batch := f.newBatch(t, "5", "0")
	r := f.newRoll(t, "10", 36)

	_, err := f.rolls.AssignChemistry(ctx, r.ID, batch.ID)
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))

	_, err = f.rolls.Rate(ctx, r.ID, 4, nil)
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))

	got, err := f.rolls.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Nil(t, got.ChemistryID)
}

func TestRollServiceTransitionEndpointRefusesBackward(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.develop(t, f.newRoll(t, "10", 36), f.newBatch(t, "5", "0"))

	_, err := f.rolls.Load(ctx, r.ID, domain.NewDate(2024, 1, 1))
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))
}

func TestRollServiceAssignUnknownChemistry(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.newRoll(t, "10", 36)
	_, err := f.rolls.Load(ctx, r.ID, domain.NewDate(2024, 5, 1))
	require.NoError(t, err)
	_, err = f.rolls.Unload(ctx, r.ID, domain.NewDate(2024, 5, 2))
	require.NoError(t, err)

	_, err = f.rolls.AssignChemistry(ctx, r.ID, "missing")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "chemistry_id")
}

func TestRollServiceUnloadBeforeLoadRejected(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.newRoll(t, "10", 36)
	_, err := f.rolls.Load(ctx, r.ID, domain.NewDate(2024, 5, 10))
	require.NoError(t, err)

	_, err = f.rolls.Unload(ctx, r.ID, domain.NewDate(2024, 5, 1))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "date_unloaded")
}

func TestRollServiceBackwardResetThroughUpdate(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.develop(t, f.newRoll(t, "10", 36), f.newBatch(t, "5", "0"))

	r, err := f.rolls.Update(ctx, r.ID, domain.RollPatch{
		Status:       domain.To(domain.StatusLoaded),
		ChemistryID:  domain.Null[string](),
		DateUnloaded: domain.Null[domain.Date](),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLoaded, r.Status)
	assert.Nil(t, r.ChemistryID)
	assert.Nil(t, r.DateUnloaded)
	require.NotNil(t, r.DateLoaded)
	assert.Nil(t, r.DevCost)
}

func TestRollServiceUpdateRejectsInconsistentStages(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.develop(t, f.newRoll(t, "10", 36), f.newBatch(t, "5", "0"))

	// Moving back without clearing the vacated fields.
	_, err := f.rolls.Update(ctx, r.ID, domain.RollPatch{Status: domain.To(domain.StatusNew)})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "date_loaded")

	_, err = f.rolls.Update(ctx, r.ID, domain.RollPatch{Status: domain.To(domain.StatusScanned)})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "stars")
}

func TestRollServiceUpdateRejectsMultiStepForward(t *testing.T) {
	f := newTestServices(t)
	r := f.newRoll(t, "10", 36)

	_, err := f.rolls.Update(context.Background(), r.ID, domain.RollPatch{Status: domain.To(domain.StatusExposed)})
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))
}

func TestRollServiceUpdateDescriptiveFields(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.newRoll(t, "10", 36)

	r, err := f.rolls.Update(ctx, r.ID, domain.RollPatch{
		Notes:         domain.To("push one stop"),
		PushPullStops: domain.To(dec("1")),
		NotMine:       domain.To(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "push one stop", r.Notes)
	assert.True(t, dec("1").Equal(*r.PushPullStops))
	assert.True(t, r.NotMine)
	assert.True(t, r.TotalCost.IsZero())
	assert.Equal(t, "Kodak Portra 400", r.FilmStockName, "absent fields are unchanged")
}

func TestRollServiceDelete(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	r := f.newRoll(t, "10", 36)

	require.NoError(t, f.rolls.Delete(ctx, r.ID))
	_, err := f.rolls.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(f.rolls.Delete(ctx, r.ID), domain.ErrNotFound))
}

func TestRollServiceListSearchAndPaging(t *testing.T) {
	f := newTestServices(t)
	ctx := context.Background()
	batch := f.newBatch(t, "6", "0")

	developed := f.develop(t, f.newRoll(t, "10", 36), batch)
	f.newRoll(t, "8", 24)
	f.newRoll(t, "20", 12)

	page, err := f.rolls.List(ctx, RollQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Rolls, 3)

	page, err = f.rolls.List(ctx, RollQuery{Search: "chemistry:cs41"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, developed.ID, page.Rolls[0].ID)

	page, err = f.rolls.List(ctx, RollQuery{Search: "cost:>=15"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	status := domain.StatusNew
	page, err = f.rolls.List(ctx, RollQuery{Status: &status, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Rolls, 1)

	page, err = f.rolls.List(ctx, RollQuery{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Rolls)
}

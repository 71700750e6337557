package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/emulsion/internal/domain"
)

func TestClassifyIsTotal(t *testing.T) {
	for _, from := range domain.Statuses() {
		for _, to := range domain.Statuses() {
			d := Classify(from, to)
			assert.Equal(t, from, d.From)
			assert.Equal(t, to, d.To)

			step := to.Index() - from.Index()
			switch {
			case step == 0:
				assert.Equal(t, Ignored, d.Kind, "%s -> %s", from, to)
			case step == 1:
				assert.Equal(t, Forward, d.Kind, "%s -> %s", from, to)
				assert.NotEqual(t, CollectNothing, d.Collector)
			case step > 1:
				assert.Equal(t, Rejected, d.Kind, "%s -> %s", from, to)
				assert.NotEmpty(t, d.Reason)
			default:
				assert.Equal(t, Backward, d.Kind, "%s -> %s", from, to)
				assert.NotEmpty(t, d.Resets)
			}
		}
	}
}

func TestForwardCollectors(t *testing.T) {
	tests := []struct {
		from, to domain.Status
		want     Collector
	}{
		{domain.StatusNew, domain.StatusLoaded, CollectLoadDate},
		{domain.StatusLoaded, domain.StatusExposed, CollectUnloadDate},
		{domain.StatusExposed, domain.StatusDeveloped, CollectChemistry},
		{domain.StatusDeveloped, domain.StatusScanned, CollectRating},
	}
	for _, tt := range tests {
		t.Run(tt.to.String(), func(t *testing.T) {
			d := Classify(tt.from, tt.to)
			assert.Equal(t, Forward, d.Kind)
			assert.Equal(t, tt.want, d.Collector)
			assert.Empty(t, d.Resets)
		})
	}
}

func TestClassifyRejectsMultiStepForward(t *testing.T) {
	d := Classify(domain.StatusNew, domain.StatusDeveloped)
	assert.Equal(t, Rejected, d.Kind)
	assert.Contains(t, d.Reason, "one stage at a time")

	assert.Equal(t, Rejected, Classify(domain.StatusLoaded, domain.StatusScanned).Kind)
}

func TestClassifyRejectsUnknownStatus(t *testing.T) {
	d := Classify(domain.Status(9), domain.StatusNew)
	assert.Equal(t, Rejected, d.Kind)
}

func TestBackwardFromScannedToNewClearsEverything(t *testing.T) {
	d := Classify(domain.StatusScanned, domain.StatusNew)
	require.Equal(t, Backward, d.Kind)
	assert.ElementsMatch(t, []Field{
		FieldStars, FieldActualExposures, FieldChemistryID, FieldDateUnloaded, FieldDateLoaded,
	}, d.Resets)

	p := ResetPatch(d)
	assert.Equal(t, domain.StatusNew, *p.Status.Value)
	assert.True(t, p.Stars.IsNull())
	assert.True(t, p.ActualExposures.IsNull())
	assert.True(t, p.ChemistryID.IsNull())
	assert.True(t, p.DateUnloaded.IsNull())
	assert.True(t, p.DateLoaded.IsNull())
}

func TestBackwardFromDevelopedToLoadedKeepsLoadDate(t *testing.T) {
	d := Classify(domain.StatusDeveloped, domain.StatusLoaded)
	require.Equal(t, Backward, d.Kind)
	assert.Equal(t, []Field{FieldChemistryID, FieldDateUnloaded}, d.Resets)

	p := ResetPatch(d)
	assert.True(t, p.ChemistryID.IsNull())
	assert.True(t, p.DateUnloaded.IsNull())
	assert.False(t, p.DateLoaded.Set)
	assert.False(t, p.Stars.Set)
}

func TestBackwardOneStep(t *testing.T) {
	d := Classify(domain.StatusScanned, domain.StatusDeveloped)
	assert.Equal(t, []Field{FieldStars, FieldActualExposures}, d.Resets)
}

func TestClassifyReturnsCopy(t *testing.T) {
	d := Classify(domain.StatusScanned, domain.StatusNew)
	d.Resets[0] = "mangled"
	again := Classify(domain.StatusScanned, domain.StatusNew)
	assert.Equal(t, FieldStars, again.Resets[0])
}

func scannedRoll() *domain.Roll {
	loaded := domain.NewDate(2024, 5, 1)
	unloaded := domain.NewDate(2024, 5, 20)
	chem := "batch"
	stars := 4
	shots := 36
	return &domain.Roll{
		Status:          domain.StatusScanned,
		DateLoaded:      &loaded,
		DateUnloaded:    &unloaded,
		ChemistryID:     &chem,
		Stars:           &stars,
		ActualExposures: &shots,
	}
}

func TestResetPatchRestoresInvariant(t *testing.T) {
	for _, to := range domain.Statuses()[:4] {
		r := scannedRoll()
		ResetPatch(Classify(r.Status, to)).Apply(r)
		assert.NoError(t, Validate(r), "after moving back to %s", to)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(scannedRoll()))
	assert.NoError(t, Validate(&domain.Roll{Status: domain.StatusNew}))

	r := scannedRoll()
	r.Status = domain.StatusLoaded
	err := Validate(r)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "date_unloaded")
	assert.Contains(t, ve.Fields, "chemistry_id")
	assert.Contains(t, ve.Fields, "stars")
	assert.Contains(t, ve.Fields, "actual_exposures")
	assert.NotContains(t, ve.Fields, "date_loaded")

	missing := &domain.Roll{Status: domain.StatusExposed}
	err = Validate(missing)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "date_loaded")
	assert.Contains(t, ve.Fields, "date_unloaded")
}

func TestValidateActualExposuresOptional(t *testing.T) {
	r := scannedRoll()
	r.ActualExposures = nil
	assert.NoError(t, Validate(r))
}

func TestValidateUnloadBeforeLoad(t *testing.T) {
	r := scannedRoll()
	early := domain.NewDate(2024, 4, 1)
	r.DateUnloaded = &early
	assert.Error(t, Validate(r))
}

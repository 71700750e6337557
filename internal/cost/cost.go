// Package cost derives batch and roll cost figures. Every function is pure;
// the Derive helpers only write into the value they are given.
package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/emulsion/internal/domain"
)

// c41BaseSeconds is the development time of a fresh C41 batch (3:30).
const c41BaseSeconds = 210

// c41PercentPerRoll is how much longer each roll through the batch makes the
// next development, in percent of the base time.
const c41PercentPerRoll = 2

// BatchCost is the sum of the batch's cost components.
func BatchCost(b *domain.ChemistryBatch) decimal.Decimal {
	return b.DeveloperCost.Add(b.FixerCost).Add(b.OtherCost)
}

// CostPerRoll amortizes the batch over the rolls it developed plus its
// offset. The denominator is floored at 1, so an unused batch reports its
// full cost.
func CostPerRoll(b *domain.ChemistryBatch, rollsDeveloped int) decimal.Decimal {
	n := rollsDeveloped + b.RollsOffset
	if n < 1 {
		n = 1
	}
	return BatchCost(b).Div(decimal.NewFromInt(int64(n)))
}

// RollTotalCost is what the roll cost the owner: the film price unless it is
// someone else's roll, plus the development share.
func RollTotalCost(filmCost, devCost decimal.Decimal, notMine bool) decimal.Decimal {
	if notMine {
		return devCost
	}
	return filmCost.Add(devCost)
}

// CostPerShot divides total by exposures. It reports false when either is
// zero.
func CostPerShot(total decimal.Decimal, exposures int) (decimal.Decimal, bool) {
	if exposures <= 0 || total.IsZero() {
		return decimal.Zero, false
	}
	return total.Div(decimal.NewFromInt(int64(exposures))), true
}

// DurationDays is the time the roll spent in the camera.
func DurationDays(loaded, unloaded *domain.Date) (int, bool) {
	if loaded == nil || unloaded == nil {
		return 0, false
	}
	return unloaded.DaysSince(*loaded), true
}

// C41DevelopmentSeconds is the development time for the next roll through a
// C41 batch that has already processed rollsThrough rolls.
func C41DevelopmentSeconds(rollsThrough int) int {
	if rollsThrough < 0 {
		rollsThrough = 0
	}
	return c41BaseSeconds * (100 + c41PercentPerRoll*rollsThrough) / 100
}

// FormatDuration renders seconds as M:SS.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// DeriveBatch fills the derived fields of b given how many rolls reference it.
func DeriveBatch(b *domain.ChemistryBatch, rollsDeveloped int) {
	b.RollsDeveloped = rollsDeveloped
	b.BatchCost = BatchCost(b)
	b.CostPerRoll = CostPerRoll(b, rollsDeveloped)
	b.IsActive = b.Active()
	b.DevelopmentTimeSeconds = nil
	b.DevelopmentTimeFormatted = nil
	if b.ChemistryType == domain.ChemistryC41 {
		secs := C41DevelopmentSeconds(rollsDeveloped + b.RollsOffset)
		formatted := FormatDuration(secs)
		b.DevelopmentTimeSeconds = &secs
		b.DevelopmentTimeFormatted = &formatted
	}
}

// DevCost is the roll's share of its batch, zero when it has none. batch must
// already be derived.
func DevCost(batch *domain.ChemistryBatch) decimal.Decimal {
	if batch == nil {
		return decimal.Zero
	}
	return batch.CostPerRoll
}

// DeriveRoll fills the derived fields of r. batch is the roll's chemistry
// batch with derived fields already set, or nil.
func DeriveRoll(r *domain.Roll, batch *domain.ChemistryBatch) {
	r.DurationDays = nil
	if days, ok := DurationDays(r.DateLoaded, r.DateUnloaded); ok {
		r.DurationDays = &days
	}

	r.DevCost = nil
	if batch != nil {
		dev := DevCost(batch)
		r.DevCost = &dev
	}

	total := RollTotalCost(r.FilmCost, DevCost(batch), r.NotMine)
	r.TotalCost = &total

	r.CostPerShot = nil
	if per, ok := CostPerShot(total, r.Exposures()); ok {
		r.CostPerShot = &per
	}
}

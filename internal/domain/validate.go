package domain

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

const (
	maxOrderIDLen    = 100
	maxNameLen       = 200
	maxFilmFormatLen = 50
)

var (
	maxPushPull = decimal.NewFromInt(3)
	minPushPull = decimal.NewFromInt(-3)
)

func (d RollDraft) Validate() error {
	var errs *multierror.Error
	errs = checkText(errs, "order_id", d.OrderID, maxOrderIDLen)
	errs = checkText(errs, "film_stock_name", d.FilmStockName, maxNameLen)
	errs = checkText(errs, "film_format", d.FilmFormat, maxFilmFormatLen)
	if d.ExpectedExposures <= 0 {
		errs = multierror.Append(errs, &FieldError{"expected_exposures", "must be greater than 0"})
	}
	if d.FilmCost.IsNegative() {
		errs = multierror.Append(errs, &FieldError{"film_cost", "must not be negative"})
	}
	if d.PushPullStops != nil {
		errs = checkPushPull(errs, *d.PushPullStops)
	}
	return Validation(errs)
}

// Validate checks the shape of every set field. Stage consistency is checked
// separately against the roll the patch lands on.
func (p RollPatch) Validate() error {
	var errs *multierror.Error
	if p.Status.Set && (p.Status.Value == nil || !p.Status.Value.Valid()) {
		errs = multierror.Append(errs, &FieldError{"status", "must be a lifecycle status"})
	}
	errs = checkRequiredText(errs, "order_id", p.OrderID, maxOrderIDLen)
	errs = checkRequiredText(errs, "film_stock_name", p.FilmStockName, maxNameLen)
	errs = checkRequiredText(errs, "film_format", p.FilmFormat, maxFilmFormatLen)
	if p.ExpectedExposures.Set && (p.ExpectedExposures.Value == nil || *p.ExpectedExposures.Value <= 0) {
		errs = multierror.Append(errs, &FieldError{"expected_exposures", "must be greater than 0"})
	}
	if p.FilmCost.Set && (p.FilmCost.Value == nil || p.FilmCost.Value.IsNegative()) {
		errs = multierror.Append(errs, &FieldError{"film_cost", "must not be negative"})
	}
	if p.NotMine.IsNull() {
		errs = multierror.Append(errs, &FieldError{"not_mine", "must not be null"})
	}
	if p.PushPullStops.Value != nil {
		errs = checkPushPull(errs, *p.PushPullStops.Value)
	}
	if p.Stars.Value != nil {
		errs = checkStars(errs, *p.Stars.Value)
	}
	if p.ActualExposures.Value != nil && *p.ActualExposures.Value <= 0 {
		errs = multierror.Append(errs, &FieldError{"actual_exposures", "must be greater than 0"})
	}
	if p.ChemistryID.Value != nil && strings.TrimSpace(*p.ChemistryID.Value) == "" {
		errs = multierror.Append(errs, &FieldError{"chemistry_id", "must not be empty"})
	}
	return Validation(errs)
}

func (d ChemistryDraft) Validate() error {
	var errs *multierror.Error
	errs = checkText(errs, "name", d.Name, maxNameLen)
	if !d.ChemistryType.Valid() {
		errs = multierror.Append(errs, &FieldError{"chemistry_type", "must be one of C41, E6, BW, ECN2, OTHER"})
	}
	errs = checkCosts(errs, d.DeveloperCost, d.FixerCost, d.OtherCost)
	if d.RollsOffset < 0 {
		errs = multierror.Append(errs, &FieldError{"rolls_offset", "must not be negative"})
	}
	return Validation(errs)
}

func (p ChemistryPatch) Validate() error {
	var errs *multierror.Error
	errs = checkRequiredText(errs, "name", p.Name, maxNameLen)
	if p.ChemistryType.Set && (p.ChemistryType.Value == nil || !p.ChemistryType.Value.Valid()) {
		errs = multierror.Append(errs, &FieldError{"chemistry_type", "must be one of C41, E6, BW, ECN2, OTHER"})
	}
	for field, c := range map[string]Patch[decimal.Decimal]{
		"developer_cost": p.DeveloperCost,
		"fixer_cost":     p.FixerCost,
		"other_cost":     p.OtherCost,
	} {
		if c.IsNull() {
			errs = multierror.Append(errs, &FieldError{field, "must not be null"})
		}
	}
	if p.RollsOffset.Set && (p.RollsOffset.Value == nil || *p.RollsOffset.Value < 0) {
		errs = multierror.Append(errs, &FieldError{"rolls_offset", "must not be negative"})
	}
	return Validation(errs)
}

// ValidateCosts checks the cost components of a complete batch, which is how
// patches are checked once applied.
func (b *ChemistryBatch) ValidateCosts() error {
	return Validation(checkCosts(nil, b.DeveloperCost, b.FixerCost, b.OtherCost))
}

func checkCosts(errs *multierror.Error, developer, fixer, other decimal.Decimal) *multierror.Error {
	negative := false
	for field, c := range map[string]decimal.Decimal{
		"developer_cost": developer,
		"fixer_cost":     fixer,
		"other_cost":     other,
	} {
		if c.IsNegative() {
			negative = true
			errs = multierror.Append(errs, &FieldError{field, "must not be negative"})
		}
	}
	if !negative && developer.IsZero() && fixer.IsZero() && other.IsZero() {
		errs = multierror.Append(errs, &FieldError{"developer_cost", "at least one cost must be greater than 0"})
	}
	return errs
}

func checkText(errs *multierror.Error, field, v string, max int) *multierror.Error {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return multierror.Append(errs, &FieldError{field, "required"})
	case len(v) > max:
		return multierror.Append(errs, &FieldError{field, "too long"})
	}
	return errs
}

func checkRequiredText(errs *multierror.Error, field string, p Patch[string], max int) *multierror.Error {
	if !p.Set {
		return errs
	}
	if p.Value == nil {
		return multierror.Append(errs, &FieldError{field, "required"})
	}
	return checkText(errs, field, *p.Value, max)
}

func checkPushPull(errs *multierror.Error, v decimal.Decimal) *multierror.Error {
	if v.LessThan(minPushPull) || v.GreaterThan(maxPushPull) {
		return multierror.Append(errs, &FieldError{"push_pull_stops", "must be between -3 and 3"})
	}
	return errs
}

func checkStars(errs *multierror.Error, stars int) *multierror.Error {
	if stars < 1 || stars > 5 {
		return multierror.Append(errs, &FieldError{"stars", "must be between 1 and 5"})
	}
	return errs
}

// ValidateRating checks the payload of the rating step.
func ValidateRating(stars int, actualExposures *int) error {
	var errs *multierror.Error
	errs = checkStars(errs, stars)
	if actualExposures != nil && *actualExposures <= 0 {
		errs = multierror.Append(errs, &FieldError{"actual_exposures", "must be greater than 0"})
	}
	return Validation(errs)
}

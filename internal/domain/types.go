package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roll is one physical roll of film. Fields below the workflow comment are
// owned by lifecycle stages; the derived block is computed by the server and
// never written back.
type Roll struct {
	ID                string           `json:"id"`
	Status            Status           `json:"status"`
	OrderID           string           `json:"order_id"`
	FilmStockName     string           `json:"film_stock_name"`
	FilmFormat        string           `json:"film_format"`
	ExpectedExposures int              `json:"expected_exposures"`
	FilmCost          decimal.Decimal  `json:"film_cost"`
	NotMine           bool             `json:"not_mine"`
	PushPullStops     *decimal.Decimal `json:"push_pull_stops"`
	Notes             string           `json:"notes"`

	// workflow
	DateLoaded      *Date   `json:"date_loaded"`
	DateUnloaded    *Date   `json:"date_unloaded"`
	ChemistryID     *string `json:"chemistry_id"`
	Stars           *int    `json:"stars"`
	ActualExposures *int    `json:"actual_exposures"`

	// derived
	DurationDays *int             `json:"duration_days"`
	DevCost      *decimal.Decimal `json:"dev_cost"`
	TotalCost    *decimal.Decimal `json:"total_cost"`
	CostPerShot  *decimal.Decimal `json:"cost_per_shot"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Exposures is the shot count used for per-shot figures: the actual count
// once known, otherwise the expected one.
func (r *Roll) Exposures() int {
	if r.ActualExposures != nil {
		return *r.ActualExposures
	}
	return r.ExpectedExposures
}

// Clone returns a deep copy so callers can hand rolls out of a shared
// collection without aliasing.
func (r *Roll) Clone() *Roll {
	if r == nil {
		return nil
	}
	c := *r
	c.PushPullStops = clonePtr(r.PushPullStops)
	c.DateLoaded = clonePtr(r.DateLoaded)
	c.DateUnloaded = clonePtr(r.DateUnloaded)
	c.ChemistryID = clonePtr(r.ChemistryID)
	c.Stars = clonePtr(r.Stars)
	c.ActualExposures = clonePtr(r.ActualExposures)
	c.DurationDays = clonePtr(r.DurationDays)
	c.DevCost = clonePtr(r.DevCost)
	c.TotalCost = clonePtr(r.TotalCost)
	c.CostPerShot = clonePtr(r.CostPerShot)
	return &c
}

// ChemistryBatch is one mixed batch of developing chemistry.
type ChemistryBatch struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ChemistryType ChemistryType   `json:"chemistry_type"`
	DateMixed     *Date           `json:"date_mixed"`
	DateRetired   *Date           `json:"date_retired"`
	DeveloperCost decimal.Decimal `json:"developer_cost"`
	FixerCost     decimal.Decimal `json:"fixer_cost"`
	OtherCost     decimal.Decimal `json:"other_cost"`
	RollsOffset   int             `json:"rolls_offset"`
	Notes         string          `json:"notes"`

	// derived
	RollsDeveloped           int             `json:"rolls_developed"`
	BatchCost                decimal.Decimal `json:"batch_cost"`
	CostPerRoll              decimal.Decimal `json:"cost_per_roll"`
	IsActive                 bool            `json:"is_active"`
	DevelopmentTimeSeconds   *int            `json:"development_time_seconds"`
	DevelopmentTimeFormatted *string         `json:"development_time_formatted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the batch has not been retired.
func (b *ChemistryBatch) Active() bool {
	return b.DateRetired == nil
}

func (b *ChemistryBatch) Clone() *ChemistryBatch {
	if b == nil {
		return nil
	}
	c := *b
	c.DateMixed = clonePtr(b.DateMixed)
	c.DateRetired = clonePtr(b.DateRetired)
	c.DevelopmentTimeSeconds = clonePtr(b.DevelopmentTimeSeconds)
	c.DevelopmentTimeFormatted = clonePtr(b.DevelopmentTimeFormatted)
	return &c
}

// RollDraft is the user-supplied part of a new roll. New rolls always start
// in NEW, so no workflow field is accepted here.
type RollDraft struct {
	OrderID           string           `json:"order_id"`
	FilmStockName     string           `json:"film_stock_name"`
	FilmFormat        string           `json:"film_format"`
	ExpectedExposures int              `json:"expected_exposures"`
	FilmCost          decimal.Decimal  `json:"film_cost"`
	NotMine           bool             `json:"not_mine"`
	PushPullStops     *decimal.Decimal `json:"push_pull_stops,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// RollPatch is a partial roll update.
type RollPatch struct {
	Status            Patch[Status]          `json:"status,omitzero"`
	OrderID           Patch[string]          `json:"order_id,omitzero"`
	FilmStockName     Patch[string]          `json:"film_stock_name,omitzero"`
	FilmFormat        Patch[string]          `json:"film_format,omitzero"`
	ExpectedExposures Patch[int]             `json:"expected_exposures,omitzero"`
	FilmCost          Patch[decimal.Decimal] `json:"film_cost,omitzero"`
	NotMine           Patch[bool]            `json:"not_mine,omitzero"`
	PushPullStops     Patch[decimal.Decimal] `json:"push_pull_stops,omitzero"`
	Notes             Patch[string]          `json:"notes,omitzero"`
	DateLoaded        Patch[Date]            `json:"date_loaded,omitzero"`
	DateUnloaded      Patch[Date]            `json:"date_unloaded,omitzero"`
	ChemistryID       Patch[string]          `json:"chemistry_id,omitzero"`
	Stars             Patch[int]             `json:"stars,omitzero"`
	ActualExposures   Patch[int]             `json:"actual_exposures,omitzero"`
}

// Apply writes every set field of p into r.
func (p RollPatch) Apply(r *Roll) {
	applyValue(p.Status, &r.Status)
	applyValue(p.OrderID, &r.OrderID)
	applyValue(p.FilmStockName, &r.FilmStockName)
	applyValue(p.FilmFormat, &r.FilmFormat)
	applyValue(p.ExpectedExposures, &r.ExpectedExposures)
	applyValue(p.FilmCost, &r.FilmCost)
	applyValue(p.NotMine, &r.NotMine)
	applyPtr(p.PushPullStops, &r.PushPullStops)
	if p.Notes.Set {
		r.Notes = ""
		applyValue(p.Notes, &r.Notes)
	}
	applyPtr(p.DateLoaded, &r.DateLoaded)
	applyPtr(p.DateUnloaded, &r.DateUnloaded)
	applyPtr(p.ChemistryID, &r.ChemistryID)
	applyPtr(p.Stars, &r.Stars)
	applyPtr(p.ActualExposures, &r.ActualExposures)
}

// ChemistryDraft is the user-supplied part of a new chemistry batch.
type ChemistryDraft struct {
	Name          string          `json:"name"`
	ChemistryType ChemistryType   `json:"chemistry_type"`
	DateMixed     *Date           `json:"date_mixed,omitempty"`
	DeveloperCost decimal.Decimal `json:"developer_cost"`
	FixerCost     decimal.Decimal `json:"fixer_cost"`
	OtherCost     decimal.Decimal `json:"other_cost"`
	RollsOffset   int             `json:"rolls_offset"`
	Notes         string          `json:"notes,omitempty"`
}

// ChemistryPatch is a partial batch update. Setting DateRetired retires the
// batch; clearing it reactivates.
type ChemistryPatch struct {
	Name          Patch[string]          `json:"name,omitzero"`
	ChemistryType Patch[ChemistryType]   `json:"chemistry_type,omitzero"`
	DateMixed     Patch[Date]            `json:"date_mixed,omitzero"`
	DateRetired   Patch[Date]            `json:"date_retired,omitzero"`
	DeveloperCost Patch[decimal.Decimal] `json:"developer_cost,omitzero"`
	FixerCost     Patch[decimal.Decimal] `json:"fixer_cost,omitzero"`
	OtherCost     Patch[decimal.Decimal] `json:"other_cost,omitzero"`
	RollsOffset   Patch[int]             `json:"rolls_offset,omitzero"`
	Notes         Patch[string]          `json:"notes,omitzero"`
}

func (p ChemistryPatch) Apply(b *ChemistryBatch) {
	applyValue(p.Name, &b.Name)
	applyValue(p.ChemistryType, &b.ChemistryType)
	applyPtr(p.DateMixed, &b.DateMixed)
	applyPtr(p.DateRetired, &b.DateRetired)
	applyValue(p.DeveloperCost, &b.DeveloperCost)
	applyValue(p.FixerCost, &b.FixerCost)
	applyValue(p.OtherCost, &b.OtherCost)
	applyValue(p.RollsOffset, &b.RollsOffset)
	if p.Notes.Set {
		b.Notes = ""
		applyValue(p.Notes, &b.Notes)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

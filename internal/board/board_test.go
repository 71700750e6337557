package board

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/lifecycle"
	"github.com/vbonduro/emulsion/internal/remote"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAPI is an in-memory server. Every response carries a fresh revision
// in Notes so tests can tell server copies from local ones.
type fakeAPI struct {
	mu        sync.Mutex
	rolls     []*domain.Roll
	batches   []*domain.ChemistryBatch
	calls     []string
	lastPatch domain.RollPatch
	fail      error
	revision  int
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) served(r *domain.Roll) *domain.Roll {
	f.revision++
	r.Notes = fmt.Sprintf("rev %d", f.revision)
	total := r.FilmCost
	r.TotalCost = &total
	return r.Clone()
}

func (f *fakeAPI) find(id string) (*domain.Roll, error) {
	for _, r := range f.rolls {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, &remote.Error{Kind: remote.KindRejected, Op: "find", Status: 404, Err: domain.ErrNotFound}
}

func (f *fakeAPI) ListRolls(_ context.Context, _ remote.RollFilter) (*remote.RollPage, error) {
	if err := f.record("ListRolls"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &remote.RollPage{Total: len(f.rolls)}
	for _, r := range f.rolls {
		page.Rolls = append(page.Rolls, r.Clone())
	}
	return page, nil
}

func (f *fakeAPI) CreateRoll(_ context.Context, d domain.RollDraft) (*domain.Roll, error) {
	if err := f.record("CreateRoll"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &domain.Roll{
		ID:                fmt.Sprintf("roll-%d", len(f.rolls)+1),
		OrderID:           d.OrderID,
		FilmStockName:     d.FilmStockName,
		FilmFormat:        d.FilmFormat,
		ExpectedExposures: d.ExpectedExposures,
		FilmCost:          d.FilmCost,
	}
	f.rolls = append(f.rolls, r)
	return f.served(r), nil
}

func (f *fakeAPI) UpdateRoll(_ context.Context, id string, p domain.RollPatch) (*domain.Roll, error) {
	return f.mutate("UpdateRoll", id, func(r *domain.Roll) {
		f.lastPatch = p
		p.Apply(r)
	})
}

func (f *fakeAPI) DeleteRoll(_ context.Context, id string) error {
	if err := f.record("DeleteRoll"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rolls {
		if r.ID == id {
			f.rolls = append(f.rolls[:i], f.rolls[i+1:]...)
			return nil
		}
	}
	return &remote.Error{Kind: remote.KindRejected, Op: "delete", Status: 404, Err: domain.ErrNotFound}
}

func (f *fakeAPI) LoadRoll(_ context.Context, id string, loaded domain.Date) (*domain.Roll, error) {
	return f.mutate("LoadRoll", id, func(r *domain.Roll) {
		r.DateLoaded = &loaded
		r.Status = domain.StatusLoaded
	})
}

func (f *fakeAPI) UnloadRoll(_ context.Context, id string, unloaded domain.Date) (*domain.Roll, error) {
	return f.mutate("UnloadRoll", id, func(r *domain.Roll) {
		r.DateUnloaded = &unloaded
		r.Status = domain.StatusExposed
	})
}

func (f *fakeAPI) AssignChemistry(_ context.Context, id, chemistryID string) (*domain.Roll, error) {
	return f.mutate("AssignChemistry", id, func(r *domain.Roll) {
		r.ChemistryID = &chemistryID
		r.Status = domain.StatusDeveloped
	})
}

func (f *fakeAPI) RateRoll(_ context.Context, id string, stars int, actual *int) (*domain.Roll, error) {
	return f.mutate("RateRoll", id, func(r *domain.Roll) {
		r.Stars = &stars
		r.ActualExposures = actual
		r.Status = domain.StatusScanned
	})
}

func (f *fakeAPI) mutate(call, id string, change func(*domain.Roll)) (*domain.Roll, error) {
	if err := f.record(call); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.find(id)
	if err != nil {
		return nil, err
	}
	change(r)
	return f.served(r), nil
}

func (f *fakeAPI) ListChemistry(_ context.Context, _ remote.ChemistryFilter) ([]*domain.ChemistryBatch, error) {
	if err := f.record("ListChemistry"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ChemistryBatch, len(f.batches))
	for i, b := range f.batches {
		out[i] = b.Clone()
	}
	return out, nil
}

func (f *fakeAPI) CreateChemistry(_ context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error) {
	if err := f.record("CreateChemistry"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &domain.ChemistryBatch{
		ID:            fmt.Sprintf("batch-%d", len(f.batches)+1),
		Name:          d.Name,
		ChemistryType: d.ChemistryType,
		DeveloperCost: d.DeveloperCost,
		FixerCost:     d.FixerCost,
		OtherCost:     d.OtherCost,
		IsActive:      true,
	}
	f.batches = append(f.batches, b)
	return b.Clone(), nil
}

func (f *fakeAPI) UpdateChemistry(_ context.Context, id string, p domain.ChemistryPatch) (*domain.ChemistryBatch, error) {
	if err := f.record("UpdateChemistry"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if b.ID == id {
			p.Apply(b)
			b.IsActive = b.Active()
			return b.Clone(), nil
		}
	}
	return nil, &remote.Error{Kind: remote.KindRejected, Op: "update", Status: 404, Err: domain.ErrNotFound}
}

func (f *fakeAPI) DeleteChemistry(_ context.Context, id string) error {
	if err := f.record("DeleteChemistry"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rolls {
		if r.ChemistryID != nil && *r.ChemistryID == id {
			return &remote.Error{Kind: remote.KindRejected, Op: "delete chemistry", Status: 409, Detail: "still referenced"}
		}
	}
	for i, b := range f.batches {
		if b.ID == id {
			f.batches = append(f.batches[:i], f.batches[i+1:]...)
			return nil
		}
	}
	return nil
}

// seed puts a roll in status st with every field that stage needs.
func (f *fakeAPI) seed(id string, st domain.Status) *domain.Roll {
	r := &domain.Roll{
		ID:                id,
		Status:            st,
		OrderID:           "ord",
		FilmStockName:     "Portra 400",
		FilmFormat:        "35mm",
		ExpectedExposures: 36,
		FilmCost:          decimal.NewFromInt(12),
	}
	if st >= domain.StatusLoaded {
		d := domain.NewDate(2024, 5, 1)
		r.DateLoaded = &d
	}
	if st >= domain.StatusExposed {
		d := domain.NewDate(2024, 5, 9)
		r.DateUnloaded = &d
	}
	if st >= domain.StatusDeveloped {
		id := "batch-1"
		r.ChemistryID = &id
	}
	if st >= domain.StatusScanned {
		stars, n := 4, 35
		r.Stars, r.ActualExposures = &stars, &n
	}
	f.rolls = append(f.rolls, r)
	return r
}

// scripted answers every collector call from its fields.
type scripted struct {
	mu        sync.Mutex
	date      domain.Date
	chemistry string
	rating    Rating
	err       error
	// gate, when set, blocks each call until it is closed.
	gate    chan struct{}
	entered chan struct{}
	asked   []lifecycle.Collector
	offered []*domain.ChemistryBatch
}

func (s *scripted) wait(kind lifecycle.Collector) error {
	s.mu.Lock()
	s.asked = append(s.asked, kind)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.err
}

func (s *scripted) CollectDate(_ context.Context, _ *domain.Roll, kind lifecycle.Collector) (domain.Date, error) {
	return s.date, s.wait(kind)
}

func (s *scripted) CollectChemistry(_ context.Context, _ *domain.Roll, active []*domain.ChemistryBatch) (string, error) {
	s.offered = active
	return s.chemistry, s.wait(lifecycle.CollectChemistry)
}

func (s *scripted) CollectRating(_ context.Context, _ *domain.Roll) (Rating, error) {
	return s.rating, s.wait(lifecycle.CollectRating)
}

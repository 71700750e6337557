package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/lifecycle"
	"github.com/vbonduro/emulsion/internal/search"
	"github.com/vbonduro/emulsion/internal/store"
)

// RollQuery selects a page of rolls. Limit 0 means no limit.
type RollQuery struct {
	Status  *domain.Status
	OrderID string
	Search  string
	Limit   int
	Offset  int
}

// RollPage is one page of enriched rolls and the number of rolls that
// matched before paging.
type RollPage struct {
	Rolls []*domain.Roll `json:"rolls"`
	Total int            `json:"total"`
}

type RollService struct {
	rolls     rollRepository
	chemistry chemistryRepository
	recorder  Recorder
	logger    *slog.Logger
}

func NewRollService(rolls rollRepository, chemistry chemistryRepository, recorder Recorder, logger *slog.Logger) *RollService {
	return &RollService{
		rolls:     rolls,
		chemistry: chemistry,
		recorder:  recorderOrNop(recorder),
		logger:    logger,
	}
}

func (s *RollService) Create(ctx context.Context, d domain.RollDraft) (*domain.Roll, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	roll, err := s.rolls.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.recorder.Mutation("roll", "create")
	s.logger.Info("roll created", "roll_id", roll.ID, "stock", roll.FilmStockName)
	cost.DeriveRoll(roll, nil)
	return roll, nil
}

func (s *RollService) Get(ctx context.Context, id string) (*domain.Roll, error) {
	roll, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, roll); err != nil {
		return nil, err
	}
	return roll, nil
}

// List filters, enriches and pages rolls. Search terms are matched against
// the enriched rolls since cost and chemistry name are derived.
func (s *RollService) List(ctx context.Context, q RollQuery) (*RollPage, error) {
	rolls, err := s.rolls.List(ctx, store.RollFilter{Status: q.Status, OrderID: q.OrderID})
	if err != nil {
		return nil, err
	}
	_, index, err := derivedBatches(ctx, s.rolls, s.chemistry)
	if err != nil {
		return nil, fmt.Errorf("failed to load chemistry for rolls: %w", err)
	}

	query := search.Parse(q.Search)
	matched := make([]*domain.Roll, 0, len(rolls))
	for _, r := range rolls {
		batch := batchFor(r, index)
		cost.DeriveRoll(r, batch)
		subject := search.Subject{Roll: r}
		if batch != nil {
			subject.ChemistryName = batch.Name
		}
		if query.Match(subject) {
			matched = append(matched, r)
		}
	}

	page := &RollPage{Total: len(matched)}
	start := min(max(q.Offset, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, end)
	}
	page.Rolls = matched[start:end]
	return page, nil
}

// Update applies a partial update. A status change in the patch must be a
// single step forward or any step back, and the result must satisfy stage
// ownership.
func (s *RollService) Update(ctx context.Context, id string, p domain.RollPatch) (*domain.Roll, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	roll, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := lifecycle.Classify(roll.Status, roll.Status)
	if p.Status.Value != nil {
		decision = lifecycle.Classify(roll.Status, *p.Status.Value)
		if decision.Kind == lifecycle.Rejected {
			return nil, fmt.Errorf("%s: %w", decision.Reason, domain.ErrIllegalTransition)
		}
	}
	if p.ChemistryID.Value != nil {
		if err := s.requireBatch(ctx, *p.ChemistryID.Value); err != nil {
			return nil, err
		}
	}

	p.Apply(roll)
	return s.save(ctx, roll, decision)
}

func (s *RollService) Delete(ctx context.Context, id string) error {
	if err := s.rolls.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Mutation("roll", "delete")
	s.logger.Info("roll deleted", "roll_id", id)
	return nil
}

// Load records the load date and moves the roll to LOADED.
func (s *RollService) Load(ctx context.Context, id string, loaded domain.Date) (*domain.Roll, error) {
	return s.advance(ctx, id, domain.StatusLoaded, func(r *domain.Roll) error {
		r.DateLoaded = &loaded
		return nil
	})
}

// Unload records the unload date and moves the roll to EXPOSED.
func (s *RollService) Unload(ctx context.Context, id string, unloaded domain.Date) (*domain.Roll, error) {
	return s.advance(ctx, id, domain.StatusExposed, func(r *domain.Roll) error {
		r.DateUnloaded = &unloaded
		return nil
	})
}

// AssignChemistry links the roll to a batch and moves it to DEVELOPED.
// Retired batches may still be assigned.
func (s *RollService) AssignChemistry(ctx context.Context, id, chemistryID string) (*domain.Roll, error) {
	if chemistryID == "" {
		return nil, domain.Invalid("chemistry_id", "required")
	}
	if err := s.requireBatch(ctx, chemistryID); err != nil {
		return nil, err
	}
	return s.advance(ctx, id, domain.StatusDeveloped, func(r *domain.Roll) error {
		r.ChemistryID = &chemistryID
		return nil
	})
}

// Rate records the star rating, and the actual exposure count when given,
// and moves the roll to SCANNED.
func (s *RollService) Rate(ctx context.Context, id string, stars int, actualExposures *int) (*domain.Roll, error) {
	if err := domain.ValidateRating(stars, actualExposures); err != nil {
		return nil, err
	}
	return s.advance(ctx, id, domain.StatusScanned, func(r *domain.Roll) error {
		r.Stars = &stars
		if actualExposures != nil {
			n := *actualExposures
			r.ActualExposures = &n
		}
		return nil
	})
}

// advance runs one forward step. Repeating the step on a roll already in the
// target status edits that stage's fields in place.
func (s *RollService) advance(ctx context.Context, id string, target domain.Status, set func(*domain.Roll) error) (*domain.Roll, error) {
	roll, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	decision := lifecycle.Classify(roll.Status, target)
	switch decision.Kind {
	case lifecycle.Forward, lifecycle.Ignored:
	default:
		reason := decision.Reason
		if reason == "" {
			reason = fmt.Sprintf("cannot move from %s to %s through this endpoint; use a partial update", roll.Status, target)
		}
		return nil, fmt.Errorf("%s: %w", reason, domain.ErrIllegalTransition)
	}

	if err := set(roll); err != nil {
		return nil, err
	}
	roll.Status = target
	return s.save(ctx, roll, decision)
}

func (s *RollService) save(ctx context.Context, roll *domain.Roll, decision lifecycle.Decision) (*domain.Roll, error) {
	if err := lifecycle.Validate(roll); err != nil {
		return nil, err
	}
	if err := s.rolls.Update(ctx, roll); err != nil {
		return nil, err
	}
	s.recorder.Mutation("roll", "update")
	if decision.Kind != lifecycle.Ignored {
		s.recorder.Transition(decision.Kind.String(), decision.From, decision.To)
		s.logger.Info("roll transitioned",
			"roll_id", roll.ID,
			"from", decision.From.String(),
			"to", decision.To.String(),
			"kind", decision.Kind.String(),
		)
	}
	return s.Get(ctx, roll.ID)
}

func (s *RollService) load(ctx context.Context, id string) (*domain.Roll, error) {
	roll, err := s.rolls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if roll == nil {
		return nil, fmt.Errorf("roll %s: %w", id, domain.ErrNotFound)
	}
	return roll, nil
}

func (s *RollService) requireBatch(ctx context.Context, id string) error {
	batch, err := s.chemistry.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.Invalid("chemistry_id", "unknown chemistry batch")
	}
	return nil
}

func (s *RollService) enrich(ctx context.Context, roll *domain.Roll) error {
	if roll.ChemistryID == nil {
		cost.DeriveRoll(roll, nil)
		return nil
	}
	batch, err := s.chemistry.GetByID(ctx, *roll.ChemistryID)
	if err != nil {
		return fmt.Errorf("failed to load chemistry for roll: %w", err)
	}
	if batch != nil {
		n, err := s.rolls.CountForChemistry(ctx, batch.ID)
		if err != nil {
			return err
		}
		cost.DeriveBatch(batch, n)
	}
	cost.DeriveRoll(roll, batch)
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/store"
)

// ChemistryList is a list of enriched batches.
type ChemistryList struct {
	Batches []*domain.ChemistryBatch `json:"batches"`
	Total   int                      `json:"total"`
}

type ChemistryService struct {
	chemistry chemistryRepository
	rolls     rollRepository
	recorder  Recorder
	logger    *slog.Logger
}

func NewChemistryService(chemistry chemistryRepository, rolls rollRepository, recorder Recorder, logger *slog.Logger) *ChemistryService {
	return &ChemistryService{
		chemistry: chemistry,
		rolls:     rolls,
		recorder:  recorderOrNop(recorder),
		logger:    logger,
	}
}

func (s *ChemistryService) Create(ctx context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	batch, err := s.chemistry.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.recorder.Mutation("chemistry", "create")
	s.logger.Info("chemistry batch created", "batch_id", batch.ID, "type", string(batch.ChemistryType))
	cost.DeriveBatch(batch, 0)
	return batch, nil
}

func (s *ChemistryService) Get(ctx context.Context, id string) (*domain.ChemistryBatch, error) {
	batch, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.rolls.CountForChemistry(ctx, id)
	if err != nil {
		return nil, err
	}
	cost.DeriveBatch(batch, n)
	return batch, nil
}

func (s *ChemistryService) List(ctx context.Context, f store.ChemistryFilter) (*ChemistryList, error) {
	if f.ChemistryType != "" && !f.ChemistryType.Valid() {
		return nil, domain.Invalid("chemistry_type", "must be one of C41, E6, BW, ECN2, OTHER")
	}
	batches, err := s.chemistry.List(ctx, f)
	if err != nil {
		return nil, err
	}
	counts, err := s.rolls.CountByChemistry(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range batches {
		cost.DeriveBatch(b, counts[b.ID])
	}
	if batches == nil {
		batches = []*domain.ChemistryBatch{}
	}
	return &ChemistryList{Batches: batches, Total: len(batches)}, nil
}

// Update applies a partial update. Retiring is an update that sets
// date_retired; clearing it reactivates the batch.
func (s *ChemistryService) Update(ctx context.Context, id string, p domain.ChemistryPatch) (*domain.ChemistryBatch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	batch, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := batch.Active()

	p.Apply(batch)
	if err := batch.ValidateCosts(); err != nil {
		return nil, err
	}
	if batch.DateMixed != nil && batch.DateRetired != nil && batch.DateRetired.Before(*batch.DateMixed) {
		return nil, domain.Invalid("date_retired", "must not be before date_mixed")
	}
	if err := s.chemistry.Update(ctx, batch); err != nil {
		return nil, err
	}

	op := "update"
	switch {
	case wasActive && !batch.Active():
		op = "retire"
	case !wasActive && batch.Active():
		op = "reactivate"
	}
	s.recorder.Mutation("chemistry", op)
	s.logger.Info("chemistry batch updated", "batch_id", id, "op", op)
	return s.Get(ctx, id)
}

// Delete removes a batch no roll references.
func (s *ChemistryService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	n, err := s.rolls.CountForChemistry(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("chemistry batch is used by %d roll(s): %w", n, domain.ErrInUse)
	}
	if err := s.chemistry.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Mutation("chemistry", "delete")
	s.logger.Info("chemistry batch deleted", "batch_id", id)
	return nil
}

func (s *ChemistryService) load(ctx context.Context, id string) (*domain.ChemistryBatch, error) {
	batch, err := s.chemistry.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("chemistry batch %s: %w", id, domain.ErrNotFound)
	}
	return batch, nil
}

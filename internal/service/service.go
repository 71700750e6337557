package service

import (
	"context"

	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/store"
)

// rollRepository is the subset of store.RollStore the services require.
type rollRepository interface {
	Create(ctx context.Context, d domain.RollDraft) (*domain.Roll, error)
	GetByID(ctx context.Context, id string) (*domain.Roll, error)
	List(ctx context.Context, f store.RollFilter) ([]*domain.Roll, error)
	Update(ctx context.Context, r *domain.Roll) error
	Delete(ctx context.Context, id string) error
	CountByChemistry(ctx context.Context) (map[string]int, error)
	CountForChemistry(ctx context.Context, chemistryID string) (int, error)
}

// chemistryRepository is the subset of store.ChemistryStore the services
// require.
type chemistryRepository interface {
	Create(ctx context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error)
	GetByID(ctx context.Context, id string) (*domain.ChemistryBatch, error)
	List(ctx context.Context, f store.ChemistryFilter) ([]*domain.ChemistryBatch, error)
	Update(ctx context.Context, b *domain.ChemistryBatch) error
	Delete(ctx context.Context, id string) error
}

// Recorder is told about every completed write.
type Recorder interface {
	Mutation(entity, op string)
	Transition(kind string, from, to domain.Status)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string)                       {}
func (nopRecorder) Transition(string, domain.Status, domain.Status) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// derivedBatches loads every batch with its derived fields, in list order
// and keyed by id.
func derivedBatches(ctx context.Context, rolls rollRepository, chemistry chemistryRepository) ([]*domain.ChemistryBatch, map[string]*domain.ChemistryBatch, error) {
	batches, err := chemistry.List(ctx, store.ChemistryFilter{})
	if err != nil {
		return nil, nil, err
	}
	counts, err := rolls.CountByChemistry(ctx)
	if err != nil {
		return nil, nil, err
	}
	index := make(map[string]*domain.ChemistryBatch, len(batches))
	for _, b := range batches {
		cost.DeriveBatch(b, counts[b.ID])
		index[b.ID] = b
	}
	return batches, index, nil
}

func batchFor(r *domain.Roll, index map[string]*domain.ChemistryBatch) *domain.ChemistryBatch {
	if r.ChemistryID == nil {
		return nil
	}
	return index[*r.ChemistryID]
}

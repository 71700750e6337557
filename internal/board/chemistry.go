package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/remote"
)

func batchID(b *domain.ChemistryBatch) string { return b.ID }

// ChemistryStore holds every batch, active or retired, and follows the same
// confirm-then-replace rule as RollStore.
type ChemistryStore struct {
	api    ChemistryAPI
	logger *slog.Logger

	mu      sync.RWMutex
	batches []*domain.ChemistryBatch
}

func NewChemistryStore(api ChemistryAPI, logger *slog.Logger) *ChemistryStore {
	return &ChemistryStore{api: api, logger: logger}
}

func (s *ChemistryStore) List() []*domain.ChemistryBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ChemistryBatch, len(s.batches))
	for i, b := range s.batches {
		out[i] = b.Clone()
	}
	return out
}

// Active returns the batches that have not been retired.
func (s *ChemistryStore) Active() []*domain.ChemistryBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.ChemistryBatch
	for _, b := range s.batches {
		if b.Active() {
			out = append(out, b.Clone())
		}
	}
	return out
}

func (s *ChemistryStore) Get(id string) (*domain.ChemistryBatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.batches, id, batchID); i >= 0 {
		return s.batches[i].Clone(), true
	}
	return nil, false
}

// Find resolves a full id, a unique id prefix or an exact name.
func (s *ChemistryStore) Find(ref string) (*domain.ChemistryBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*domain.ChemistryBatch
	for _, b := range s.batches {
		if b.ID == ref {
			return b.Clone(), nil
		}
		if (ref != "" && strings.HasPrefix(b.ID, ref)) || strings.EqualFold(b.Name, ref) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("chemistry batch %s: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0].Clone(), nil
	default:
		return nil, fmt.Errorf("chemistry batch %q is ambiguous", ref)
	}
}

func (s *ChemistryStore) Refresh(ctx context.Context) error {
	batches, err := s.api.ListChemistry(ctx, remote.ChemistryFilter{})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.batches = batches
	s.mu.Unlock()
	s.logger.Debug("chemistry refreshed", "count", len(batches))
	return nil
}

func (s *ChemistryStore) Create(ctx context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.apply(s.api.CreateChemistry(ctx, d))
}

func (s *ChemistryStore) Update(ctx context.Context, id string, p domain.ChemistryPatch) (*domain.ChemistryBatch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.apply(s.api.UpdateChemistry(ctx, id, p))
}

// Retire sets the retirement date. The batch stays referenceable.
func (s *ChemistryStore) Retire(ctx context.Context, id string, on domain.Date) (*domain.ChemistryBatch, error) {
	return s.Update(ctx, id, domain.ChemistryPatch{DateRetired: domain.To(on)})
}

// Delete removes the batch. The server refuses while rolls reference it.
func (s *ChemistryStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteChemistry(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.batches, id, batchID); i >= 0 {
		s.batches = append(s.batches[:i], s.batches[i+1:]...)
	}
	return nil
}

func (s *ChemistryStore) apply(b *domain.ChemistryBatch, err error) (*domain.ChemistryBatch, error) {
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.batches = upsert(s.batches, b, batchID)
	s.mu.Unlock()
	return b.Clone(), nil
}

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

func rollID(r *domain.Roll) string { return r.ID }

// RollStore holds the rolls in server order. Every write goes to the server
// first and the local entry is replaced with the server's response; a failed
// call leaves the collection as it was.
type RollStore struct {
	api    RollAPI
	logger *slog.Logger

	mu    sync.RWMutex
	rolls []*domain.Roll
}

func NewRollStore(api RollAPI, logger *slog.Logger) *RollStore {
	return &RollStore{api: api, logger: logger}
}

// List returns copies of every roll.
func (s *RollStore) List() []*domain.Roll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Roll, len(s.rolls))
	for i, r := range s.rolls {
		out[i] = r.Clone()
	}
	return out
}

// ByStatus returns copies of the rolls in status st, in store order.
func (s *RollStore) ByStatus(st domain.Status) []*domain.Roll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Roll
	for _, r := range s.rolls {
		if r.Status == st {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *RollStore) Get(id string) (*domain.Roll, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.rolls, id, rollID); i >= 0 {
		return s.rolls[i].Clone(), true
	}
	return nil, false
}

// Find resolves a full id or a unique id prefix.
func (s *RollStore) Find(ref string) (*domain.Roll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var match *domain.Roll
	for _, r := range s.rolls {
		if r.ID == ref {
			return r.Clone(), nil
		}
		if ref != "" && strings.HasPrefix(r.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("roll %q is ambiguous", ref)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("roll %s: %w", ref, domain.ErrNotFound)
	}
	return match.Clone(), nil
}

// Refresh replaces the whole collection with the server's list.
func (s *RollStore) Refresh(ctx context.Context) error {
	page, err := s.api.ListRolls(ctx, remote.RollFilter{})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.rolls = page.Rolls
	s.mu.Unlock()
	s.logger.Debug("rolls refreshed", "count", len(page.Rolls))
	return nil
}

func (s *RollStore) Create(ctx context.Context, d domain.RollDraft) (*domain.Roll, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.apply(s.api.CreateRoll(ctx, d))
}

func (s *RollStore) Update(ctx context.Context, id string, p domain.RollPatch) (*domain.Roll, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.apply(s.api.UpdateRoll(ctx, id, p))
}

func (s *RollStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteRoll(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.rolls, id, rollID); i >= 0 {
		s.rolls = append(s.rolls[:i], s.rolls[i+1:]...)
	}
	return nil
}

func (s *RollStore) Load(ctx context.Context, id string, loaded domain.Date) (*domain.Roll, error) {
	return s.apply(s.api.LoadRoll(ctx, id, loaded))
}

func (s *RollStore) Unload(ctx context.Context, id string, unloaded domain.Date) (*domain.Roll, error) {
	return s.apply(s.api.UnloadRoll(ctx, id, unloaded))
}

func (s *RollStore) AssignChemistry(ctx context.Context, id, chemistryID string) (*domain.Roll, error) {
	if strings.TrimSpace(chemistryID) == "" {
		return nil, domain.Invalid("chemistry_id", "required")
	}
	return s.apply(s.api.AssignChemistry(ctx, id, chemistryID))
}

func (s *RollStore) Rate(ctx context.Context, id string, stars int, actualExposures *int) (*domain.Roll, error) {
	if err := domain.ValidateRating(stars, actualExposures); err != nil {
		return nil, err
	}
	return s.apply(s.api.RateRoll(ctx, id, stars, actualExposures))
}

// apply stores the server's copy of a roll after a successful call.
func (s *RollStore) apply(r *domain.Roll, err error) (*domain.Roll, error) {
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.rolls = upsert(s.rolls, r, rollID)
	s.mu.Unlock()
	return r.Clone(), nil
}

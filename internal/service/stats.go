package service

import (
	"context"
	"log/slog"

	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/store"
)

type StatsService struct {
	rolls     rollRepository
	chemistry chemistryRepository
	logger    *slog.Logger
}

func NewStatsService(rolls rollRepository, chemistry chemistryRepository, logger *slog.Logger) *StatsService {
	return &StatsService{rolls: rolls, chemistry: chemistry, logger: logger}
}

// Summary aggregates every roll and batch.
func (s *StatsService) Summary(ctx context.Context) (*cost.Summary, error) {
	rolls, err := s.rolls.List(ctx, store.RollFilter{})
	if err != nil {
		return nil, err
	}
	batches, _, err := derivedBatches(ctx, s.rolls, s.chemistry)
	if err != nil {
		return nil, err
	}
	summary := cost.Summarize(rolls, batches)
	s.logger.Debug("stats computed", "rolls", summary.Rolls, "batches", len(batches))
	return &summary, nil
}

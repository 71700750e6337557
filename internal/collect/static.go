// Package collect answers the board's input requests for forward
// transitions, either from preset values or by prompting on a terminal.
package collect

import (
	"context"
	"fmt"

	"github.com/vbonduro/emulsion/internal/board"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/lifecycle"
)

// Static answers from preset values, typically command-line flags.
type Static struct {
	// Date is used for both load and unload steps. Nil means today.
	Date *domain.Date
	// Chemistry is a batch id. Empty picks the only active batch, if there
	// is exactly one.
	Chemistry       string
	Stars           int
	ActualExposures *int
}

func (s Static) CollectDate(_ context.Context, _ *domain.Roll, _ lifecycle.Collector) (domain.Date, error) {
	if s.Date != nil {
		return *s.Date, nil
	}
	return domain.Today(), nil
}

func (s Static) CollectChemistry(_ context.Context, _ *domain.Roll, active []*domain.ChemistryBatch) (string, error) {
	if s.Chemistry != "" {
		return s.Chemistry, nil
	}
	if len(active) == 1 {
		return active[0].ID, nil
	}
	return "", domain.Invalid("chemistry_id", fmt.Sprintf("required: %d active batches to choose from", len(active)))
}

func (s Static) CollectRating(context.Context, *domain.Roll) (board.Rating, error) {
	if s.Stars == 0 {
		return board.Rating{}, domain.Invalid("stars", "required")
	}
	return board.Rating{Stars: s.Stars, ActualExposures: s.ActualExposures}, nil
}

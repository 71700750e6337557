package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/lifecycle"
	"github.com/vbonduro/emulsion/internal/remote"
)

// ErrCancelled is returned by a Collector when the user dismissed it.
var ErrCancelled = errors.New("cancelled")

// Rating is the input for the SCANNED step.
type Rating struct {
	Stars           int
	ActualExposures *int
}

// Collector gathers the one value a forward step needs. Returning
// ErrCancelled abandons the transition without contacting the server.
type Collector interface {
	// CollectDate asks for the load date (kind CollectLoadDate) or the
	// unload date (kind CollectUnloadDate).
	CollectDate(ctx context.Context, roll *domain.Roll, kind lifecycle.Collector) (domain.Date, error)
	// CollectChemistry picks a batch id; active lists the batches on offer.
	CollectChemistry(ctx context.Context, roll *domain.Roll, active []*domain.ChemistryBatch) (string, error)
	CollectRating(ctx context.Context, roll *domain.Roll) (Rating, error)
}

// OutcomeKind is how a transition request ended.
type OutcomeKind int

const (
	// Applied means the server accepted the change and the store holds the
	// new roll.
	Applied OutcomeKind = iota
	// Ignored means the roll was already in the target status.
	Ignored
	// Rejected means the move or its input is not allowed. Nothing was sent.
	Rejected
	// Cancelled means the collector was dismissed. Nothing was sent.
	Cancelled
	// Failed means the server call failed. The store is unchanged unless it
	// was refreshed.
	Failed
	// Busy means another request for the same roll is still pending.
	Busy
)

func (k OutcomeKind) String() string {
	switch k {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	case Busy:
		return "busy"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome reports a transition request. Roll is the roll after the request:
// the server's copy when Applied, otherwise the unchanged local copy.
type Outcome struct {
	Kind     OutcomeKind
	Decision lifecycle.Decision
	Roll     *domain.Roll
	Reason   string
	Err      error
}

// Orchestrator runs requested status changes through classification, input
// collection and the matching server call.
type Orchestrator struct {
	rolls            *RollStore
	chemistry        *ChemistryStore
	collector        Collector
	refreshOnFailure bool
	logger           *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewOrchestrator wires the stores to a collector. With refreshOnFailure
// set, a failed server call re-fetches both stores.
func NewOrchestrator(rolls *RollStore, chemistry *ChemistryStore, collector Collector, refreshOnFailure bool, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		rolls:            rolls,
		chemistry:        chemistry,
		collector:        collector,
		refreshOnFailure: refreshOnFailure,
		logger:           logger,
		inFlight:         make(map[string]struct{}),
	}
}

// Request moves roll rollID to target.
func (o *Orchestrator) Request(ctx context.Context, rollID string, target domain.Status) Outcome {
	roll, ok := o.rolls.Get(rollID)
	if !ok {
		return Outcome{
			Kind:   Rejected,
			Reason: fmt.Sprintf("roll %s is not on the board", rollID),
			Err:    domain.ErrNotFound,
		}
	}
	if !o.acquire(rollID) {
		return Outcome{Kind: Busy, Roll: roll, Reason: "a change to this roll is still pending"}
	}
	defer o.release(rollID)

	d := lifecycle.Classify(roll.Status, target)
	out := Outcome{Decision: d, Roll: roll}
	switch d.Kind {
	case lifecycle.Ignored:
		out.Kind = Ignored
		return out
	case lifecycle.Rejected:
		out.Kind = Rejected
		out.Reason = d.Reason
		out.Err = domain.ErrIllegalTransition
		return out
	case lifecycle.Backward:
		return o.finish(ctx, out, func() (*domain.Roll, error) {
			return o.rolls.Update(ctx, rollID, lifecycle.ResetPatch(d))
		})
	}

	call, err := o.collect(ctx, roll, d)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.Is(err, ErrCancelled):
			out.Kind = Cancelled
			return out
		case errors.As(err, &ve):
			out.Kind = Rejected
		default:
			out.Kind = Failed
		}
		out.Reason = err.Error()
		out.Err = err
		return out
	}
	return o.finish(ctx, out, call)
}

// collect runs the collector for a forward step and returns the server call
// that applies its answer.
func (o *Orchestrator) collect(ctx context.Context, roll *domain.Roll, d lifecycle.Decision) (func() (*domain.Roll, error), error) {
	switch d.Collector {
	case lifecycle.CollectLoadDate:
		date, err := o.collector.CollectDate(ctx, roll, d.Collector)
		if err != nil {
			return nil, err
		}
		return func() (*domain.Roll, error) { return o.rolls.Load(ctx, roll.ID, date) }, nil
	case lifecycle.CollectUnloadDate:
		date, err := o.collector.CollectDate(ctx, roll, d.Collector)
		if err != nil {
			return nil, err
		}
		return func() (*domain.Roll, error) { return o.rolls.Unload(ctx, roll.ID, date) }, nil
	case lifecycle.CollectChemistry:
		id, err := o.collector.CollectChemistry(ctx, roll, o.chemistry.Active())
		if err != nil {
			return nil, err
		}
		return func() (*domain.Roll, error) { return o.rolls.AssignChemistry(ctx, roll.ID, id) }, nil
	case lifecycle.CollectRating:
		rating, err := o.collector.CollectRating(ctx, roll)
		if err != nil {
			return nil, err
		}
		return func() (*domain.Roll, error) {
			return o.rolls.Rate(ctx, roll.ID, rating.Stars, rating.ActualExposures)
		}, nil
	default:
		return nil, fmt.Errorf("no collector for %s", d.To)
	}
}

// finish performs the server call and fills in the outcome.
func (o *Orchestrator) finish(ctx context.Context, out Outcome, call func() (*domain.Roll, error)) Outcome {
	updated, err := call()
	if err != nil {
		var ve *domain.ValidationError
		if _, remoteErr := remote.KindOf(err); !remoteErr && errors.As(err, &ve) {
			out.Kind = Rejected
			out.Reason = ve.Error()
			out.Err = err
			return out
		}
		out.Kind = Failed
		out.Reason = err.Error()
		out.Err = err
		o.logger.Warn("transition failed",
			"roll_id", out.Roll.ID,
			"from", out.Decision.From.String(),
			"to", out.Decision.To.String(),
			"error", err,
		)
		if o.refreshOnFailure {
			o.refresh(ctx)
			if r, ok := o.rolls.Get(out.Roll.ID); ok {
				out.Roll = r
			}
		}
		return out
	}

	out.Kind = Applied
	out.Roll = updated
	o.logger.Info("transition applied",
		"roll_id", updated.ID,
		"from", out.Decision.From.String(),
		"to", out.Decision.To.String(),
		"kind", out.Decision.Kind.String(),
	)
	if changesChemistry(out.Decision) {
		// Batch usage counts and per-roll cost moved on the server.
		if err := o.chemistry.Refresh(ctx); err != nil {
			o.logger.Warn("failed to refresh chemistry", "error", err)
		}
	}
	return out
}

func (o *Orchestrator) refresh(ctx context.Context) {
	if err := o.rolls.Refresh(ctx); err != nil {
		o.logger.Warn("failed to refresh rolls", "error", err)
	}
	if err := o.chemistry.Refresh(ctx); err != nil {
		o.logger.Warn("failed to refresh chemistry", "error", err)
	}
}

func changesChemistry(d lifecycle.Decision) bool {
	if d.Kind == lifecycle.Forward {
		return d.Collector == lifecycle.CollectChemistry
	}
	for _, f := range d.Resets {
		if f == lifecycle.FieldChemistryID {
			return true
		}
	}
	return false
}

func (o *Orchestrator) acquire(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[id]; busy {
		return false
	}
	o.inFlight[id] = struct{}{}
	return true
}

func (o *Orchestrator) release(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, id)
}

// Summarize aggregates the current contents of both stores.
func Summarize(rolls *RollStore, chemistry *ChemistryStore) cost.Summary {
	return cost.Summarize(rolls.List(), chemistry.List())
}

// Package lifecycle is the roll state machine: which status changes are
// legal, which input a forward step needs, and which fields a backward step
// clears.
package lifecycle

import (
	"fmt"

	"github.com/vbonduro/emulsion/internal/domain"
)

// Kind classifies a requested status change.
type Kind int

const (
	// Ignored means the roll is already in the target status.
	Ignored Kind = iota
	// Rejected means the move is not allowed and nothing may change.
	Rejected
	// Forward is a single step ahead; it needs collector input.
	Forward
	// Backward is any step back; it clears the vacated stages' fields.
	Backward
)

func (k Kind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Collector names the input a forward step waits for.
type Collector int

const (
	CollectNothing Collector = iota
	CollectLoadDate
	CollectUnloadDate
	CollectChemistry
	CollectRating
)

func (c Collector) String() string {
	switch c {
	case CollectNothing:
		return "none"
	case CollectLoadDate:
		return "load date"
	case CollectUnloadDate:
		return "unload date"
	case CollectChemistry:
		return "chemistry batch"
	case CollectRating:
		return "rating"
	default:
		return fmt.Sprintf("Collector(%d)", int(c))
	}
}

// Field is a workflow field owned by one stage.
type Field string

const (
	FieldDateLoaded      Field = "date_loaded"
	FieldDateUnloaded    Field = "date_unloaded"
	FieldChemistryID     Field = "chemistry_id"
	FieldStars           Field = "stars"
	FieldActualExposures Field = "actual_exposures"
)

// Decision is the table entry for one (from, to) pair.
type Decision struct {
	Kind      Kind
	From      domain.Status
	To        domain.Status
	Collector Collector
	// Resets lists the fields a backward move clears, latest stage first.
	Resets []Field
	Reason string
}

// owned maps each stage to the fields it introduces. Entries are listed
// in the order they should be cleared when the stage is vacated.
var owned = [domain.NumStatuses][]Field{
	domain.StatusNew:       nil,
	domain.StatusLoaded:    {FieldDateLoaded},
	domain.StatusExposed:   {FieldDateUnloaded},
	domain.StatusDeveloped: {FieldChemistryID},
	domain.StatusScanned:   {FieldStars, FieldActualExposures},
}

// required marks the owned fields a stage cannot exist without.
var required = map[Field]bool{
	FieldDateLoaded:   true,
	FieldDateUnloaded: true,
	FieldChemistryID:  true,
	FieldStars:        true,
}

var collectors = [domain.NumStatuses]Collector{
	domain.StatusNew:       CollectNothing,
	domain.StatusLoaded:    CollectLoadDate,
	domain.StatusExposed:   CollectUnloadDate,
	domain.StatusDeveloped: CollectChemistry,
	domain.StatusScanned:   CollectRating,
}

var table [domain.NumStatuses][domain.NumStatuses]Decision

func init() {
	for _, from := range domain.Statuses() {
		for _, to := range domain.Statuses() {
			table[from][to] = decide(from, to)
		}
	}
}

func decide(from, to domain.Status) Decision {
	d := Decision{From: from, To: to}
	step := to.Index() - from.Index()
	switch {
	case step == 0:
		d.Kind = Ignored
	case step == 1:
		d.Kind = Forward
		d.Collector = collectors[to]
	case step > 1:
		d.Kind = Rejected
		d.Reason = fmt.Sprintf("cannot move from %s to %s: rolls advance one stage at a time", from, to)
	default:
		d.Kind = Backward
		for s := from; s > to; s-- {
			d.Resets = append(d.Resets, owned[s]...)
		}
	}
	return d
}

// Classify returns the decision for moving a roll from one status to another.
// Unknown statuses are rejected.
func Classify(from, to domain.Status) Decision {
	if !from.Valid() || !to.Valid() {
		return Decision{
			Kind:   Rejected,
			From:   from,
			To:     to,
			Reason: fmt.Sprintf("cannot move from %s to %s: unknown status", from, to),
		}
	}
	d := table[from][to]
	d.Resets = append([]Field(nil), d.Resets...)
	return d
}

// OwnedFields returns the fields introduced by status s.
func OwnedFields(s domain.Status) []Field {
	if !s.Valid() {
		return nil
	}
	return append([]Field(nil), owned[s]...)
}

// ResetPatch builds the update a backward decision sends: the new status plus
// every reset field set to null.
func ResetPatch(d Decision) domain.RollPatch {
	p := domain.RollPatch{Status: domain.To(d.To)}
	for _, f := range d.Resets {
		switch f {
		case FieldDateLoaded:
			p.DateLoaded = domain.Null[domain.Date]()
		case FieldDateUnloaded:
			p.DateUnloaded = domain.Null[domain.Date]()
		case FieldChemistryID:
			p.ChemistryID = domain.Null[string]()
		case FieldStars:
			p.Stars = domain.Null[int]()
		case FieldActualExposures:
			p.ActualExposures = domain.Null[int]()
		}
	}
	return p
}

func isSet(r *domain.Roll, f Field) bool {
	switch f {
	case FieldDateLoaded:
		return r.DateLoaded != nil
	case FieldDateUnloaded:
		return r.DateUnloaded != nil
	case FieldChemistryID:
		return r.ChemistryID != nil
	case FieldStars:
		return r.Stars != nil
	case FieldActualExposures:
		return r.ActualExposures != nil
	}
	return false
}

// Validate checks stage ownership: fields of stages after the roll's status
// must be empty and required fields of reached stages must be present.
func Validate(r *domain.Roll) error {
	if !r.Status.Valid() {
		return domain.Invalid("status", "must be a lifecycle status")
	}
	fields := make(map[string]string)
	for _, s := range domain.Statuses() {
		for _, f := range owned[s] {
			set := isSet(r, f)
			switch {
			case s > r.Status && set:
				fields[string(f)] = fmt.Sprintf("must be empty until the roll is %s", s)
			case s <= r.Status && !set && required[f]:
				fields[string(f)] = fmt.Sprintf("required once the roll is %s", s)
			}
		}
	}
	if r.DateLoaded != nil && r.DateUnloaded != nil && r.DateUnloaded.Before(*r.DateLoaded) {
		fields[string(FieldDateUnloaded)] = "must not be before date_loaded"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Package drag turns pointer, touch and keyboard gestures over the status
// columns of the board into requested transitions.
//
// A Surface only reports where a card was dropped. It never moves a card
// between columns itself: the caller passes the Drop to the orchestrator and
// redraws from the store once the transition is confirmed.
package drag

import (
	"time"

	"github.com/vbonduro/emulsion/internal/domain"
)

// Activation thresholds per input source.
const (
	// PointerDistance is how far a pressed pointer must travel before a
	// drag starts, so plain clicks still reach the card.
	PointerDistance = 8.0
	// TouchDelay is how long a touch must be held before a drag starts.
	TouchDelay = 250 * time.Millisecond
	// TouchTolerance is how far a held touch may drift before the press is
	// treated as a scroll and abandoned.
	TouchTolerance = 5.0
)

type Source int

const (
	Pointer Source = iota
	Touch
	Keyboard
)

func (s Source) String() string {
	switch s {
	case Pointer:
		return "pointer"
	case Touch:
		return "touch"
	case Keyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

type Key int

const (
	KeySpace Key = iota
	KeyEnter
	KeyLeft
	KeyRight
	KeyEscape
)

// State is the phase of the current gesture.
type State int

const (
	Idle State = iota
	// Pending is a press that has not met its source's threshold yet.
	Pending
	Dragging
)

// Drop is a completed gesture: roll RollID was released over the column
// for Target.
type Drop struct {
	RollID string
	Target domain.Status
}

type droppable struct {
	id     string
	column bool
	status domain.Status
	rect   Rect
}

type card struct {
	status domain.Status
	rect   Rect
}

type gesture struct {
	rollID  string
	source  Source
	start   Point
	pressed time.Time
	origin  Rect
	rect    Rect
	column  int
}

// Surface tracks registered columns and cards and the gesture in progress.
// It is driven from a single event loop and is not safe for concurrent use.
type Surface struct {
	columns []droppable
	cards   map[string]card
	order   []string
	focus   string
	g       *gesture
	state   State
	now     func() time.Time
}

func NewSurface() *Surface {
	return &Surface{cards: make(map[string]card), now: time.Now}
}

// SetColumn registers or moves the column for status.
func (s *Surface) SetColumn(status domain.Status, r Rect) {
	for i := range s.columns {
		if s.columns[i].status == status {
			s.columns[i].rect = r
			return
		}
	}
	s.columns = append(s.columns, droppable{id: status.String(), column: true, status: status, rect: r})
	// Keep columns in workflow order for keyboard navigation.
	for i := len(s.columns) - 1; i > 0 && s.columns[i].status < s.columns[i-1].status; i-- {
		s.columns[i], s.columns[i-1] = s.columns[i-1], s.columns[i]
	}
}

// SetCard registers or moves the card for a roll shown in status's column.
func (s *Surface) SetCard(rollID string, status domain.Status, r Rect) {
	if _, ok := s.cards[rollID]; !ok {
		s.order = append(s.order, rollID)
	}
	s.cards[rollID] = card{status: status, rect: r}
}

// RemoveCard forgets a card, abandoning any gesture on it.
func (s *Surface) RemoveCard(rollID string) {
	if _, ok := s.cards[rollID]; !ok {
		return
	}
	delete(s.cards, rollID)
	for i, id := range s.order {
		if id == rollID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.g != nil && s.g.rollID == rollID {
		s.reset()
	}
	if s.focus == rollID {
		s.focus = ""
	}
}

func (s *Surface) State() State { return s.state }

// Dragging returns the roll being dragged, if a drag is active.
func (s *Surface) Dragging() (string, bool) {
	if s.state != Dragging {
		return "", false
	}
	return s.g.rollID, true
}

// Position is where the card for rollID is drawn: following the gesture
// while it is dragged, otherwise where it was registered.
func (s *Surface) Position(rollID string) (Rect, bool) {
	if s.state == Dragging && s.g.rollID == rollID {
		return s.g.rect, true
	}
	c, ok := s.cards[rollID]
	return c.rect, ok
}

// Press starts a pointer or touch gesture on a card.
func (s *Surface) Press(src Source, rollID string, at Point) {
	c, ok := s.cards[rollID]
	if !ok || src == Keyboard || s.state != Idle {
		return
	}
	s.g = &gesture{
		rollID:  rollID,
		source:  src,
		start:   at,
		pressed: s.now(),
		origin:  c.rect,
		rect:    c.rect,
	}
	s.state = Pending
}

// Move reports the pointer or touch position.
func (s *Surface) Move(at Point) {
	if s.g == nil || s.g.source == Keyboard {
		return
	}
	if s.state == Pending {
		moved := at.Dist(s.g.start)
		switch s.g.source {
		case Pointer:
			if moved < PointerDistance {
				return
			}
		case Touch:
			// Once held long enough the press is a drag however far it
			// then moves; before that, drifting makes it a scroll.
			if s.now().Sub(s.g.pressed) < TouchDelay {
				if moved > TouchTolerance {
					s.reset()
				}
				return
			}
		}
		s.state = Dragging
	}
	s.g.rect = s.g.origin.Translate(at.Sub(s.g.start))
}

// Tick lets a held touch start dragging without moving.
func (s *Surface) Tick() {
	if s.state == Pending && s.g.source == Touch && s.now().Sub(s.g.pressed) >= TouchDelay {
		s.state = Dragging
	}
}

// Release ends a pointer or touch gesture at the given position and
// resolves the drop.
func (s *Surface) Release(at Point) (Drop, bool) {
	if s.g == nil || s.g.source == Keyboard {
		return Drop{}, false
	}
	defer s.reset()
	if s.state != Dragging {
		return Drop{}, false
	}
	s.g.rect = s.g.origin.Translate(at.Sub(s.g.start))
	target, ok := s.resolve(at, s.g.rect)
	if !ok {
		return Drop{}, false
	}
	return Drop{RollID: s.g.rollID, Target: target}, true
}

// Cancel abandons the gesture and puts the card back.
func (s *Surface) Cancel() {
	s.reset()
}

// Focus selects the card keyboard commands act on.
func (s *Surface) Focus(rollID string) {
	if _, ok := s.cards[rollID]; ok {
		s.focus = rollID
	}
}

func (s *Surface) Focused() string { return s.focus }

// Key handles keyboard dragging: space or enter picks up the focused card
// and drops it again, left and right move it across columns, escape
// cancels. A keyboard drop targets the column the card was moved to.
func (s *Surface) Key(k Key) (Drop, bool) {
	switch k {
	case KeySpace, KeyEnter:
		if s.state == Idle {
			s.pickUp()
			return Drop{}, false
		}
		if s.state == Dragging && s.g.source == Keyboard {
			d := Drop{RollID: s.g.rollID, Target: s.columns[s.g.column].status}
			s.reset()
			return d, true
		}
	case KeyLeft, KeyRight:
		if s.state == Dragging && s.g.source == Keyboard {
			step := 1
			if k == KeyLeft {
				step = -1
			}
			s.g.column = min(max(s.g.column+step, 0), len(s.columns)-1)
			s.g.rect = s.g.origin.CenteredIn(s.columns[s.g.column].rect)
		}
	case KeyEscape:
		s.reset()
	}
	return Drop{}, false
}

func (s *Surface) pickUp() {
	c, ok := s.cards[s.focus]
	if !ok || len(s.columns) == 0 {
		return
	}
	col := 0
	for i, d := range s.columns {
		if d.status == c.status {
			col = i
		}
	}
	s.g = &gesture{rollID: s.focus, source: Keyboard, origin: c.rect, rect: c.rect, column: col}
	s.state = Dragging
}

// resolve runs the closest-corners test over the droppables the pointer is
// inside or the dragged rectangle overlaps. Only a column may win.
func (s *Surface) resolve(pointer Point, dragged Rect) (domain.Status, bool) {
	var (
		best  *droppable
		bestD float64
	)
	consider := func(d droppable) {
		if !d.rect.Contains(pointer) && !d.rect.Overlaps(dragged) {
			return
		}
		dist := cornerDistance(dragged, d.rect)
		if best == nil || dist < bestD {
			best, bestD = &d, dist
		}
	}
	for _, d := range s.columns {
		consider(d)
	}
	for _, id := range s.order {
		if id == s.g.rollID {
			continue
		}
		consider(droppable{id: id, rect: s.cards[id].rect})
	}
	if best == nil || !best.column {
		return 0, false
	}
	return best.status, true
}

func (s *Surface) reset() {
	s.g = nil
	s.state = Idle
}

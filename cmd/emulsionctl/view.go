package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/drag"
)

// Board geometry in surface units. Only the relative layout matters: the
// terminal view maps columns and rows back to text cells.
const (
	columnWidth  = 200.0
	columnGap    = 20.0
	cardWidth    = 180.0
	cardHeight   = 60.0
	cardSpacing  = 70.0
	columnHeight = 100000.0

	cellWidth = 20
)

// boardView is the text board: rolls grouped by column, laid out on a drag
// surface so keyboard drags resolve the same way pointer drags would.
type boardView struct {
	surface *drag.Surface
	columns [][]*domain.Roll
}

func columnRect(st domain.Status) drag.Rect {
	return drag.Rect{X: float64(st.Index()) * (columnWidth + columnGap), W: columnWidth, H: columnHeight}
}

func cardRect(st domain.Status, row int) drag.Rect {
	col := columnRect(st)
	return drag.Rect{X: col.X + (columnWidth-cardWidth)/2, Y: 10 + float64(row)*cardSpacing, W: cardWidth, H: cardHeight}
}

// newBoardView lays out rolls and keeps focus on the given roll when it is
// still on the board, otherwise on the first card.
func newBoardView(rolls []*domain.Roll, focus string) *boardView {
	v := &boardView{surface: drag.NewSurface(), columns: make([][]*domain.Roll, domain.NumStatuses)}
	for _, st := range domain.Statuses() {
		v.surface.SetColumn(st, columnRect(st))
	}
	for _, r := range rolls {
		i := r.Status.Index()
		v.surface.SetCard(r.ID, r.Status, cardRect(r.Status, len(v.columns[i])))
		v.columns[i] = append(v.columns[i], r)
	}
	v.surface.Focus(focus)
	if v.surface.Focused() == "" {
		for _, col := range v.columns {
			if len(col) > 0 {
				v.surface.Focus(col[0].ID)
				break
			}
		}
	}
	return v
}

// locate returns the column and row of a roll.
func (v *boardView) locate(id string) (int, int, bool) {
	for c, col := range v.columns {
		for r, roll := range col {
			if roll.ID == id {
				return c, r, true
			}
		}
	}
	return 0, 0, false
}

// moveFocus steps focus by dx columns or dy rows, skipping empty columns and
// clamping the row.
func (v *boardView) moveFocus(dx, dy int) {
	c, r, ok := v.locate(v.surface.Focused())
	if !ok {
		return
	}
	if dy != 0 {
		r = min(max(r+dy, 0), len(v.columns[c])-1)
		v.surface.Focus(v.columns[c][r].ID)
		return
	}
	for next := c + dx; next >= 0 && next < len(v.columns); next += dx {
		if col := v.columns[next]; len(col) > 0 {
			v.surface.Focus(col[min(r, len(col)-1)].ID)
			return
		}
	}
}

// shownIn is the column a card is drawn in: under the dragged card's
// center while it moves, otherwise its status column.
func (v *boardView) shownIn(r *domain.Roll) int {
	if id, ok := v.surface.Dragging(); ok && id == r.ID {
		pos, _ := v.surface.Position(r.ID)
		i := int(pos.Center().X / (columnWidth + columnGap))
		return min(max(i, 0), len(v.columns)-1)
	}
	return r.Status.Index()
}

func (v *boardView) render(w io.Writer, status string) {
	cols := make([][]string, len(v.columns))
	focus := v.surface.Focused()
	dragging, _ := v.surface.Dragging()
	for _, col := range v.columns {
		for _, r := range col {
			mark := " "
			switch r.ID {
			case dragging:
				mark = "*"
			case focus:
				mark = ">"
			}
			i := v.shownIn(r)
			cols[i] = append(cols[i], mark+cardLabel(r))
		}
	}

	var b strings.Builder
	b.WriteString("\x1b[H\x1b[2J")
	for _, st := range domain.Statuses() {
		b.WriteString(pad(fmt.Sprintf(" %s (%d)", st, len(v.columns[st.Index()]))))
	}
	b.WriteString("\r\n")
	rows := 0
	for _, c := range cols {
		rows = max(rows, len(c))
	}
	for row := range rows {
		for _, c := range cols {
			cell := ""
			if row < len(c) {
				cell = c[row]
			}
			b.WriteString(pad(cell))
		}
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n arrows/hjkl move  space pick up/drop  esc cancel  r refresh  q quit\r\n")
	if status != "" {
		b.WriteString(" " + status + "\r\n")
	}
	_, _ = io.WriteString(w, b.String())
}

func cardLabel(r *domain.Roll) string {
	name := []rune(r.FilmStockName)
	if len(name) > cellWidth-8 {
		name = append(name[:cellWidth-9], '~')
	}
	return fmt.Sprintf("%s %s", string(name), shortID(r.ID)[:min(4, len(r.ID))])
}

func pad(s string) string {
	n := len([]rune(s))
	if n >= cellWidth {
		return string([]rune(s)[:cellWidth-1]) + " "
	}
	return s + strings.Repeat(" ", cellWidth-n)
}

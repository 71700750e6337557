// Package search parses the roll list query language and matches rolls
// against it.
//
//	portra                  text in stock, order id or notes
//	format:120 stock:"Portra 400"
//	stars:>=4 cost:<10 push:1 pull:1
//	status:loaded mine:true chemistry:c41 date:2024-06
//
// A term whose field is unknown is searched as text. A term whose value does
// not parse for its field is dropped.
package search

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/emulsion/internal/domain"
)

// Op is a comparison operator.
type Op string

const (
	OpContains Op = "contains"
	OpEq       Op = "="
	OpGt       Op = ">"
	OpLt       Op = "<"
	OpGte      Op = ">="
	OpLte      Op = "<="
)

// Field is a searchable roll attribute.
type Field string

const (
	FieldText      Field = ""
	FieldFormat    Field = "format"
	FieldStock     Field = "stock"
	FieldOrder     Field = "order"
	FieldStatus    Field = "status"
	FieldStars     Field = "stars"
	FieldMine      Field = "mine"
	FieldNotMine   Field = "not_mine"
	FieldPush      Field = "push"
	FieldPull      Field = "pull"
	FieldChemistry Field = "chemistry"
	FieldCost      Field = "cost"
	FieldDate      Field = "date"
)

var knownFields = map[Field]bool{
	FieldFormat: true, FieldStock: true, FieldOrder: true, FieldStatus: true,
	FieldStars: true, FieldMine: true, FieldNotMine: true, FieldPush: true,
	FieldPull: true, FieldChemistry: true, FieldCost: true, FieldDate: true,
}

// Term is one parsed query token.
type Term struct {
	Field Field
	Op    Op
	Value string
}

// Query is a conjunction of terms. The zero Query matches every roll.
type Query struct {
	Terms []Term
}

// Empty reports whether q has no terms.
func (q Query) Empty() bool { return len(q.Terms) == 0 }

// Parse splits raw on unquoted spaces and turns each part into a term.
func Parse(raw string) Query {
	var q Query
	for _, part := range split(strings.TrimSpace(raw)) {
		q.Terms = append(q.Terms, parseTerm(part))
	}
	return q
}

func split(s string) []string {
	var (
		parts    []string
		current  strings.Builder
		inQuotes bool
	)
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return parts
}

func parseTerm(part string) Term {
	name, rest, ok := strings.Cut(part, ":")
	if !ok || name == "" || rest == "" || !isWord(name) {
		return Term{Field: FieldText, Op: OpContains, Value: part}
	}
	field := Field(strings.ToLower(name))
	if !knownFields[field] {
		return Term{Field: FieldText, Op: OpContains, Value: part}
	}

	op := OpEq
	for _, candidate := range []Op{OpGte, OpLte, OpGt, OpLt, OpEq} {
		if v, found := strings.CutPrefix(rest, string(candidate)); found && v != "" {
			op, rest = candidate, v
			break
		}
	}
	return Term{Field: field, Op: op, Value: rest}
}

func isWord(s string) bool {
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Subject is what a query is matched against: a roll with its derived
// fields filled in and the name of its chemistry batch, if any.
type Subject struct {
	Roll          *domain.Roll
	ChemistryName string
}

// Match reports whether s satisfies every term of q.
func (q Query) Match(s Subject) bool {
	for _, t := range q.Terms {
		if !t.match(s) {
			return false
		}
	}
	return true
}

func (t Term) match(s Subject) bool {
	r := s.Roll
	switch t.Field {
	case FieldText:
		return containsFold(r.FilmStockName, t.Value) ||
			containsFold(r.OrderID, t.Value) ||
			containsFold(r.Notes, t.Value)
	case FieldFormat:
		return t.matchText(r.FilmFormat)
	case FieldStock:
		return t.matchText(r.FilmStockName)
	case FieldOrder:
		return t.matchText(r.OrderID)
	case FieldStatus:
		st, err := domain.ParseStatus(t.Value)
		if err != nil || t.Op != OpEq {
			return false
		}
		return r.Status == st
	case FieldStars:
		want, err := strconv.Atoi(t.Value)
		if err != nil {
			return true
		}
		if r.Stars == nil {
			return false
		}
		return compare(decimal.NewFromInt(int64(*r.Stars)), t.Op, decimal.NewFromInt(int64(want)))
	case FieldMine, FieldNotMine:
		if t.Op != OpEq {
			return true
		}
		want := parseBool(t.Value)
		if t.Field == FieldMine {
			return r.NotMine != want
		}
		return r.NotMine == want
	case FieldPush, FieldPull:
		want, err := decimal.NewFromString(strings.TrimPrefix(t.Value, "+"))
		if err != nil {
			return true
		}
		if t.Field == FieldPull {
			want = want.Abs().Neg()
		}
		if r.PushPullStops == nil {
			return false
		}
		return compare(*r.PushPullStops, t.Op, want)
	case FieldChemistry:
		return s.ChemistryName != "" && containsFold(s.ChemistryName, t.Value)
	case FieldCost:
		want, err := decimal.NewFromString(t.Value)
		if err != nil || r.TotalCost == nil {
			return false
		}
		if t.Op == OpEq {
			return r.TotalCost.Sub(want).Abs().LessThan(costTolerance)
		}
		return compare(*r.TotalCost, t.Op, want)
	case FieldDate:
		return t.matchDate(r.DateLoaded)
	}
	return true
}

var costTolerance = decimal.RequireFromString("0.01")

// matchText is a case-insensitive substring match for '=' and a lexical
// comparison otherwise.
func (t Term) matchText(v string) bool {
	if t.Op == OpEq {
		return containsFold(v, t.Value)
	}
	c := strings.Compare(strings.ToLower(v), strings.ToLower(t.Value))
	return compareSign(c, t.Op)
}

// matchDate matches date_loaded against a year, a month or a day. Years and
// months only support equality.
func (t Term) matchDate(loaded *domain.Date) bool {
	switch len(t.Value) {
	case 4:
		year, err := strconv.Atoi(t.Value)
		if err != nil {
			return true
		}
		return loaded != nil && loaded.Year() == year
	case 7:
		year, err1 := strconv.Atoi(t.Value[:4])
		month, err2 := strconv.Atoi(t.Value[5:])
		if err1 != nil || err2 != nil || t.Value[4] != '-' {
			return true
		}
		return loaded != nil && loaded.Year() == year && int(loaded.Month()) == month
	case 10:
		want, err := domain.ParseDate(t.Value)
		if err != nil {
			return true
		}
		if loaded == nil {
			return false
		}
		switch {
		case loaded.Before(want):
			return compareSign(-1, t.Op)
		case loaded.After(want):
			return compareSign(1, t.Op)
		default:
			return compareSign(0, t.Op)
		}
	}
	return true
}

func compare(got decimal.Decimal, op Op, want decimal.Decimal) bool {
	return compareSign(got.Cmp(want), op)
}

func compareSign(c int, op Op) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpGt:
		return c > 0
	case OpLt:
		return c < 0
	case OpGte:
		return c >= 0
	case OpLte:
		return c <= 0
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "1", "t", "y":
		return true
	}
	return false
}

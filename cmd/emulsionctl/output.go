package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/emulsion/internal/board"
	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/domain"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func orDash[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func printRolls(rolls []*domain.Roll) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTOCK\tFORMAT\tLOADED\tSTARS\tTOTAL\tPER SHOT")
	for _, r := range rolls {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID),
			r.Status,
			r.FilmStockName,
			r.FilmFormat,
			orDash(r.DateLoaded),
			orDash(r.Stars),
			money(r.TotalCost),
			money(r.CostPerShot),
		)
	}
	_ = w.Flush()
}

func printRoll(r *domain.Roll, batch *domain.ChemistryBatch) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", r.ID)
	fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	fmt.Fprintf(w, "Stock:\t%s (%s, %d exposures)\n", r.FilmStockName, r.FilmFormat, r.ExpectedExposures)
	if r.OrderID != "" {
		fmt.Fprintf(w, "Order:\t%s\n", r.OrderID)
	}
	fmt.Fprintf(w, "Film cost:\t%s", r.FilmCost.StringFixed(2))
	if r.NotMine {
		fmt.Fprint(w, " (not mine)")
	}
	fmt.Fprintln(w)
	if r.PushPullStops != nil {
		fmt.Fprintf(w, "Push/pull:\t%s\n", r.PushPullStops.String())
	}
	fmt.Fprintf(w, "Loaded:\t%s\n", orDash(r.DateLoaded))
	fmt.Fprintf(w, "Unloaded:\t%s\n", orDash(r.DateUnloaded))
	if r.DurationDays != nil {
		fmt.Fprintf(w, "In camera:\t%d days\n", *r.DurationDays)
	}
	if batch != nil {
		fmt.Fprintf(w, "Chemistry:\t%s (%s)\n", batch.Name, batch.ChemistryType)
	} else {
		fmt.Fprintf(w, "Chemistry:\t%s\n", orDash(r.ChemistryID))
	}
	fmt.Fprintf(w, "Stars:\t%s\n", orDash(r.Stars))
	fmt.Fprintf(w, "Exposures:\t%d\n", r.Exposures())
	fmt.Fprintf(w, "Dev cost:\t%s\n", money(r.DevCost))
	fmt.Fprintf(w, "Total cost:\t%s\n", money(r.TotalCost))
	fmt.Fprintf(w, "Per shot:\t%s\n", money(r.CostPerShot))
	if r.Notes != "" {
		fmt.Fprintf(w, "Notes:\t%s\n", r.Notes)
	}
	_ = w.Flush()
}

func printBatches(batches []*domain.ChemistryBatch) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tMIXED\tRETIRED\tROLLS\tCOST\tPER ROLL\tDEV TIME")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(b.ID),
			b.Name,
			b.ChemistryType,
			orDash(b.DateMixed),
			orDash(b.DateRetired),
			b.RollsDeveloped,
			b.BatchCost.StringFixed(2),
			b.CostPerRoll.StringFixed(2),
			orDash(b.DevelopmentTimeFormatted),
		)
	}
	_ = w.Flush()
}

func printSummary(s *cost.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Rolls:\t%d\n", s.Rolls)
	for _, st := range domain.Statuses() {
		fmt.Fprintf(w, "  %s:\t%d\n", st, s.ByStatus[st])
	}
	fmt.Fprintf(w, "Film spend:\t%s\n", s.FilmSpend.StringFixed(2))
	fmt.Fprintf(w, "Dev spend:\t%s\n", s.DevSpend.StringFixed(2))
	fmt.Fprintf(w, "Total spend:\t%s\n", s.TotalSpend.StringFixed(2))
	fmt.Fprintf(w, "Shots:\t%d\n", s.TotalShots)
	fmt.Fprintf(w, "Average per shot:\t%s\n", money(s.AverageCostPerShot))
	if s.MostExpensive != nil {
		fmt.Fprintf(w, "Most expensive:\t%s %s\n", s.MostExpensive.FilmStockName, s.MostExpensive.Amount.StringFixed(2))
	}
	if s.CheapestPerShot != nil {
		fmt.Fprintf(w, "Cheapest per shot:\t%s %s\n", s.CheapestPerShot.FilmStockName, s.CheapestPerShot.Amount.StringFixed(2))
	}
	for _, u := range s.BatchUsage {
		fmt.Fprintf(w, "Batch %s:\t%d rolls\n", u.Name, u.Rolls)
	}
	_ = w.Flush()
}

// outcomeLine describes a transition outcome in one line.
func outcomeLine(out board.Outcome) string {
	name := "roll"
	if out.Roll != nil {
		name = out.Roll.FilmStockName
	}
	switch out.Kind {
	case board.Applied:
		return fmt.Sprintf("%s moved %s -> %s", name, out.Decision.From, out.Decision.To)
	case board.Ignored:
		return fmt.Sprintf("%s is already %s", name, out.Decision.To)
	case board.Cancelled:
		return fmt.Sprintf("%s left in %s", name, out.Decision.From)
	default:
		return fmt.Sprintf("%s: %s: %s", name, out.Kind, out.Reason)
	}
}

// report prints an outcome and turns the unsuccessful ones into an error.
func report(out board.Outcome) error {
	switch out.Kind {
	case board.Applied, board.Ignored, board.Cancelled:
		fmt.Println(outcomeLine(out))
		return nil
	}
	return errors.New(outcomeLine(out))
}

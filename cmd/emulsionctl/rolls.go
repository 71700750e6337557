package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/remote"
)

// rolls command
var rollsCmd = &cobra.Command{
	Use:   "rolls",
	Short: "Manage film rolls",
}

var rollsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rolls",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		var f remote.RollFilter
		if raw, _ := cmd.Flags().GetString("status"); raw != "" {
			st, err := domain.ParseStatus(strings.ToUpper(raw))
			if err != nil {
				return err
			}
			f.Status = &st
		}
		f.OrderID, _ = cmd.Flags().GetString("order")
		f.Search, _ = cmd.Flags().GetString("search")
		f.Limit, _ = cmd.Flags().GetInt("limit")
		f.Offset, _ = cmd.Flags().GetInt("offset")

		page, err := a.client.ListRolls(cmd.Context(), f)
		if err != nil {
			return err
		}
		if len(page.Rolls) == 0 {
			fmt.Println("No rolls found.")
			return nil
		}
		printRolls(page.Rolls)
		if len(page.Rolls) < page.Total {
			fmt.Printf("\nShowing %d of %d\n", len(page.Rolls), page.Total)
		}
		return nil
	},
}

var rollsShowCmd = &cobra.Command{
	Use:   "show ROLL",
	Short: "Show one roll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.load(cmd.Context()); err != nil {
			return err
		}
		r, err := a.rolls.Find(args[0])
		if err != nil {
			return err
		}
		var batch *domain.ChemistryBatch
		if r.ChemistryID != nil {
			batch, _ = a.chemistry.Get(*r.ChemistryID)
		}
		printRoll(r, batch)
		return nil
	},
}

var rollsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new roll",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		f := cmd.Flags()
		var d domain.RollDraft
		d.FilmStockName, _ = f.GetString("stock")
		d.FilmFormat, _ = f.GetString("format")
		d.ExpectedExposures, _ = f.GetInt("exposures")
		d.OrderID, _ = f.GetString("order")
		d.NotMine, _ = f.GetBool("not-mine")
		d.Notes, _ = f.GetString("notes")
		if d.FilmCost, err = decimalFlag(cmd, "cost"); err != nil {
			return err
		}
		if f.Changed("push-pull") {
			stops, err := decimalFlag(cmd, "push-pull")
			if err != nil {
				return err
			}
			d.PushPullStops = &stops
		}

		r, err := a.rolls.Create(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %s (%s)\n", r.FilmStockName, r.FilmFormat, r.ID)
		return nil
	},
}

var rollsEditCmd = &cobra.Command{
	Use:   "edit ROLL",
	Short: "Change roll details",
	Long: "Change roll details. Only the flags given are sent; an empty " +
		"--push-pull or --notes clears the field.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.rolls.Refresh(cmd.Context()); err != nil {
			return err
		}
		r, err := a.rolls.Find(args[0])
		if err != nil {
			return err
		}

		p, err := rollPatchFromFlags(cmd)
		if err != nil {
			return err
		}
		if p == (domain.RollPatch{}) {
			return fmt.Errorf("nothing to change")
		}
		r, err = a.rolls.Update(cmd.Context(), r.ID, p)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (%s)\n", r.FilmStockName, r.ID)
		return nil
	},
}

var rollsMoveCmd = &cobra.Command{
	Use:   "move ROLL STATUS",
	Short: "Move a roll to another lifecycle status",
	Long: "Move a roll to another lifecycle status. Forward moves ask for the " +
		"stage's input on a terminal, or take it from --date, --chemistry, " +
		"--stars and --exposures. Backward moves clear what later stages set.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.load(cmd.Context()); err != nil {
			return err
		}
		r, err := a.rolls.Find(args[0])
		if err != nil {
			return err
		}
		target, err := domain.ParseStatus(strings.ToUpper(args[1]))
		if err != nil {
			return err
		}
		c, err := a.collector(cmd)
		if err != nil {
			return err
		}
		return report(a.orchestrator(c).Request(cmd.Context(), r.ID, target))
	},
}

var rollsDeleteCmd = &cobra.Command{
	Use:   "delete ROLL",
	Short: "Delete a roll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.rolls.Refresh(cmd.Context()); err != nil {
			return err
		}
		r, err := a.rolls.Find(args[0])
		if err != nil {
			return err
		}
		if err := a.rolls.Delete(cmd.Context(), r.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%s)\n", r.FilmStockName, r.ID)
		return nil
	},
}

// rollPatchFromFlags builds a patch from the flags that were given.
func rollPatchFromFlags(cmd *cobra.Command) (domain.RollPatch, error) {
	f := cmd.Flags()
	var p domain.RollPatch
	if f.Changed("stock") {
		v, _ := f.GetString("stock")
		p.FilmStockName = domain.To(v)
	}
	if f.Changed("format") {
		v, _ := f.GetString("format")
		p.FilmFormat = domain.To(v)
	}
	if f.Changed("exposures") {
		v, _ := f.GetInt("exposures")
		p.ExpectedExposures = domain.To(v)
	}
	if f.Changed("order") {
		v, _ := f.GetString("order")
		p.OrderID = domain.To(v)
	}
	if f.Changed("not-mine") {
		v, _ := f.GetBool("not-mine")
		p.NotMine = domain.To(v)
	}
	if f.Changed("cost") {
		v, err := decimalFlag(cmd, "cost")
		if err != nil {
			return p, err
		}
		p.FilmCost = domain.To(v)
	}
	if f.Changed("push-pull") {
		if raw, _ := f.GetString("push-pull"); raw == "" {
			p.PushPullStops = domain.Null[decimal.Decimal]()
		} else {
			v, err := decimalFlag(cmd, "push-pull")
			if err != nil {
				return p, err
			}
			p.PushPullStops = domain.To(v)
		}
	}
	if f.Changed("notes") {
		if v, _ := f.GetString("notes"); v == "" {
			p.Notes = domain.Null[string]()
		} else {
			p.Notes = domain.To(v)
		}
	}
	return p, nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return v, nil
}

func rollDetailFlags(cmd *cobra.Command) {
	cmd.Flags().String("stock", "", "Film stock name")
	cmd.Flags().String("format", "35mm", "Film format")
	cmd.Flags().Int("exposures", 36, "Expected exposures")
	cmd.Flags().String("cost", "", "Film cost")
	cmd.Flags().String("order", "", "Order id")
	cmd.Flags().Bool("not-mine", false, "Roll belongs to someone else; its film cost is not counted")
	cmd.Flags().String("push-pull", "", "Push (+) or pull (-) stops")
	cmd.Flags().String("notes", "", "Notes")
}

func transitionFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "Load or unload date, YYYY-MM-DD (default today)")
	cmd.Flags().String("chemistry", "", "Chemistry batch id, id prefix or name")
	cmd.Flags().Int("stars", 0, "Rating, 1-5")
	cmd.Flags().Int("exposures", 0, "Actual exposure count")
}

func init() {
	rollsListCmd.Flags().StringP("status", "s", "", "Only rolls in this status")
	rollsListCmd.Flags().String("order", "", "Only rolls from this order")
	rollsListCmd.Flags().StringP("search", "q", "", "Search query, e.g. 'portra status:exposed'")
	rollsListCmd.Flags().IntP("limit", "n", 0, "Maximum number of rolls to show")
	rollsListCmd.Flags().Int("offset", 0, "Rolls to skip")

	rollDetailFlags(rollsAddCmd)
	_ = rollsAddCmd.MarkFlagRequired("stock")
	rollDetailFlags(rollsEditCmd)
	transitionFlags(rollsMoveCmd)

	rollsCmd.AddCommand(rollsListCmd)
	rollsCmd.AddCommand(rollsShowCmd)
	rollsCmd.AddCommand(rollsAddCmd)
	rollsCmd.AddCommand(rollsEditCmd)
	rollsCmd.AddCommand(rollsMoveCmd)
	rollsCmd.AddCommand(rollsDeleteCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/remote"
)

// chem command
var chemCmd = &cobra.Command{
	Use:     "chem",
	Aliases: []string{"chemistry"},
	Short:   "Manage chemistry batches",
}

var chemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chemistry batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		var f remote.ChemistryFilter
		f.ActiveOnly, _ = cmd.Flags().GetBool("active")
		if raw, _ := cmd.Flags().GetString("type"); raw != "" {
			t, err := domain.ParseChemistryType(strings.ToUpper(raw))
			if err != nil {
				return err
			}
			f.ChemistryType = t
		}

		batches, err := a.client.ListChemistry(cmd.Context(), f)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println("No chemistry batches found.")
			return nil
		}
		printBatches(batches)
		return nil
	},
}

var chemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a chemistry batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		f := cmd.Flags()
		var d domain.ChemistryDraft
		d.Name, _ = f.GetString("name")
		d.Notes, _ = f.GetString("notes")
		d.RollsOffset, _ = f.GetInt("offset")
		rawType, _ := f.GetString("type")
		if d.ChemistryType, err = domain.ParseChemistryType(strings.ToUpper(rawType)); err != nil {
			return err
		}
		if raw, _ := f.GetString("mixed"); raw != "" {
			mixed, err := domain.ParseDate(raw)
			if err != nil {
				return err
			}
			d.DateMixed = &mixed
		}
		if d.DeveloperCost, err = decimalFlag(cmd, "developer"); err != nil {
			return err
		}
		if d.FixerCost, err = decimalFlag(cmd, "fixer"); err != nil {
			return err
		}
		if d.OtherCost, err = decimalFlag(cmd, "other"); err != nil {
			return err
		}

		b, err := a.chemistry.Create(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %s (%s), batch cost %s\n", b.ChemistryType, b.Name, b.ID, b.BatchCost.StringFixed(2))
		return nil
	},
}

var chemRetireCmd = &cobra.Command{
	Use:   "retire BATCH",
	Short: "Retire a chemistry batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.chemistry.Refresh(cmd.Context()); err != nil {
			return err
		}
		b, err := a.chemistry.Find(args[0])
		if err != nil {
			return err
		}

		on := domain.Today()
		if raw, _ := cmd.Flags().GetString("date"); raw != "" {
			if on, err = domain.ParseDate(raw); err != nil {
				return err
			}
		}
		b, err = a.chemistry.Retire(cmd.Context(), b.ID, on)
		if err != nil {
			return err
		}
		fmt.Printf("Retired %s on %s after %d rolls\n", b.Name, on, b.RollsDeveloped)
		return nil
	},
}

var chemDeleteCmd = &cobra.Command{
	Use:   "delete BATCH",
	Short: "Delete a chemistry batch no roll uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.chemistry.Refresh(cmd.Context()); err != nil {
			return err
		}
		b, err := a.chemistry.Find(args[0])
		if err != nil {
			return err
		}
		if err := a.chemistry.Delete(cmd.Context(), b.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%s)\n", b.Name, b.ID)
		return nil
	},
}

func init() {
	chemListCmd.Flags().Bool("active", false, "Only batches that are not retired")
	chemListCmd.Flags().String("type", "", "Only batches of this chemistry type")

	chemAddCmd.Flags().String("name", "", "Batch name")
	chemAddCmd.Flags().String("type", "C41", "Chemistry type (C41, E6, BW, ECN2, OTHER)")
	chemAddCmd.Flags().String("mixed", "", "Date mixed, YYYY-MM-DD")
	chemAddCmd.Flags().String("developer", "", "Developer cost")
	chemAddCmd.Flags().String("fixer", "", "Fixer cost")
	chemAddCmd.Flags().String("other", "", "Other cost")
	chemAddCmd.Flags().Int("offset", 0, "Rolls developed in this batch before it was tracked")
	chemAddCmd.Flags().String("notes", "", "Notes")
	_ = chemAddCmd.MarkFlagRequired("name")

	chemRetireCmd.Flags().String("date", "", "Retirement date, YYYY-MM-DD (default today)")

	chemCmd.AddCommand(chemListCmd)
	chemCmd.AddCommand(chemAddCmd)
	chemCmd.AddCommand(chemRetireCmd)
	chemCmd.AddCommand(chemDeleteCmd)
}

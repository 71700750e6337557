package main

import (
	"github.com/spf13/cobra"

	"github.com/vbonduro/emulsion/internal/board"
	"github.com/vbonduro/emulsion/internal/cost"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show spend and usage figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		var s *cost.Summary
		if local, _ := cmd.Flags().GetBool("local"); local {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			sum := board.Summarize(a.rolls, a.chemistry)
			s = &sum
		} else if s, err = a.client.Stats(cmd.Context()); err != nil {
			return err
		}
		printSummary(s)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("local", false, "Compute from the fetched rolls instead of asking the server")
}

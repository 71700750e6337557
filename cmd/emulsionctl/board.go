package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vbonduro/emulsion/internal/collect"
	"github.com/vbonduro/emulsion/internal/drag"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive lifecycle board",
	Long: "Shows rolls in one column per status. Pick a card up with space, " +
		"carry it across columns with the arrow keys and drop it with space " +
		"again; the move is then run as if by 'rolls move'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errors.New("board needs an interactive terminal; use 'rolls move' in scripts")
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := a.load(ctx); err != nil {
			return err
		}
		orch := a.orchestrator(collect.NewPrompt(os.Stdin, os.Stdout))

		v := newBoardView(a.rolls.List(), "")
		status := ""
		for {
			v.render(os.Stdout, status)
			key, err := readKey(fd)
			if err != nil {
				return err
			}
			if key == keyQuit && v.surface.State() == drag.Idle {
				return nil
			}
			drop, ok, next := handleKey(v, key)
			switch {
			case ok:
				fmt.Print("\x1b[H\x1b[2J")
				out := orch.Request(ctx, drop.RollID, drop.Target)
				status = outcomeLine(out)
				v = newBoardView(a.rolls.List(), drop.RollID)
			case next == keyRefresh:
				if err := a.load(ctx); err != nil {
					status = err.Error()
				} else {
					status = "refreshed"
				}
				v = newBoardView(a.rolls.List(), v.surface.Focused())
			}
		}
	},
}

// handleKey applies a key to the view. It returns the drop when the key
// completed one, and passes through keys the view does not handle.
func handleKey(v *boardView, key keyPress) (drag.Drop, bool, keyPress) {
	dragging := v.surface.State() == drag.Dragging
	switch key {
	case keyUp:
		if !dragging {
			v.moveFocus(0, -1)
		}
	case keyDown:
		if !dragging {
			v.moveFocus(0, 1)
		}
	case keyLeft:
		if dragging {
			v.surface.Key(drag.KeyLeft)
		} else {
			v.moveFocus(-1, 0)
		}
	case keyRight:
		if dragging {
			v.surface.Key(drag.KeyRight)
		} else {
			v.moveFocus(1, 0)
		}
	case keySpace:
		d, ok := v.surface.Key(drag.KeySpace)
		return d, ok, keyNone
	case keyEnter:
		d, ok := v.surface.Key(drag.KeyEnter)
		return d, ok, keyNone
	case keyEscape, keyQuit:
		v.surface.Key(drag.KeyEscape)
	default:
		return drag.Drop{}, false, key
	}
	return drag.Drop{}, false, keyNone
}

// readKey reads one key press with the terminal in raw mode, restoring it
// before returning so collectors can prompt normally.
func readKey(fd int) (keyPress, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return keyNone, fmt.Errorf("entering raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, state) }()

	var buf [8]byte
	n, err := os.Stdin.Read(buf[:])
	if err != nil {
		return keyNone, err
	}
	return decodeKey(buf[:n]), nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vbonduro/emulsion/internal/board"
	"github.com/vbonduro/emulsion/internal/collect"
	"github.com/vbonduro/emulsion/internal/config"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/logging"
	"github.com/vbonduro/emulsion/internal/remote"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the client side of one command: the API client and the board
// stores built on it.
type app struct {
	cfg       *config.ClientConfig
	client    *remote.Client
	rolls     *board.RollStore
	chemistry *board.ChemistryStore
	logger    *slog.Logger
}

// newApp reads the config file and applies flag overrides.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultClientConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.LoadClient(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if cmd.Flags().Changed("server") {
		cfg.Server, _ = cmd.Flags().GetString("server")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout.Duration, _ = cmd.Flags().GetDuration("timeout")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	logger := logging.NewText(cfg.LogLevel, os.Stderr)
	client := remote.New(cfg.Server, cfg.Timeout.Duration, logger)
	return &app{
		cfg:       cfg,
		client:    client,
		rolls:     board.NewRollStore(client, logger),
		chemistry: board.NewChemistryStore(client, logger),
		logger:    logger,
	}, nil
}

// load fills both stores from the server.
func (a *app) load(ctx context.Context) error {
	if err := a.rolls.Refresh(ctx); err != nil {
		return fmt.Errorf("loading rolls: %w", err)
	}
	if err := a.chemistry.Refresh(ctx); err != nil {
		return fmt.Errorf("loading chemistry: %w", err)
	}
	return nil
}

// collector prompts on an interactive terminal unless any answer was given
// as a flag.
func (a *app) collector(cmd *cobra.Command) (board.Collector, error) {
	f := cmd.Flags()
	preset := f.Changed("date") || f.Changed("chemistry") || f.Changed("stars") || f.Changed("exposures")
	if !preset && term.IsTerminal(int(os.Stdin.Fd())) {
		return collect.NewPrompt(os.Stdin, os.Stdout), nil
	}

	var s collect.Static
	if raw, _ := f.GetString("date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		s.Date = &d
	}
	if ref, _ := f.GetString("chemistry"); ref != "" {
		b, err := a.chemistry.Find(ref)
		if err != nil {
			return nil, err
		}
		s.Chemistry = b.ID
	}
	s.Stars, _ = f.GetInt("stars")
	if f.Changed("exposures") {
		n, _ := f.GetInt("exposures")
		s.ActualExposures = &n
	}
	return s, nil
}

func (a *app) orchestrator(c board.Collector) *board.Orchestrator {
	return board.NewOrchestrator(a.rolls, a.chemistry, c, a.cfg.RefreshOnFailure, a.logger)
}

var rootCmd = &cobra.Command{
	Use:          "emulsionctl",
	Short:        "Track film rolls from loading to scanning",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			if path, err = config.DefaultClientConfigPath(); err != nil {
				return err
			}
		}
		if err := config.WriteClient(path, a.cfg); err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", path)
		fmt.Printf("Server:  %s\n", a.cfg.Server)
		fmt.Printf("Timeout: %s\n", a.cfg.Timeout)
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		start := time.Now()
		if err := a.client.Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("%s ok (%s)\n", a.cfg.Server, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/emulsion/config.toml)")
	rootCmd.PersistentFlags().String("server", "", "Server base URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(rollsCmd)
	rootCmd.AddCommand(chemCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(boardCmd)
}

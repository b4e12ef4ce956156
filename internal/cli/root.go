// Package cli provides the partrep commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"partrep/internal/api"
	"partrep/internal/config"
	"partrep/internal/eventbus"
	"partrep/internal/logging"
)

// globalOptions holds the persistent flags and what they load
type globalOptions struct {
	configPath string
	memberID   string
	preset     string
	debug      bool

	cfgSvc config.ConfigService
	cfg    *config.Config
	logger *logging.Logger
	bus    eventbus.EventBus
}

// Execute runs the root command until it finishes or a signal arrives
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates the root command for the partrep CLI
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "partrep",
		Short: "Metadata participation reports in the terminal",
		Long: `partrep shows how much of a member's registered content carries
metadata such as references, abstracts, ORCID iDs and funder IDs.

Run it without arguments to open the dashboard, or use 'partrep report'
to print a report for scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), g)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (default: user config dir)")
	cmd.PersistentFlags().StringVarP(&g.memberID, "member", "m", "", "Member ID, overrides member.id")
	cmd.PersistentFlags().StringVarP(&g.preset, "preset", "p", "", "Deployment preset: production, staging, cwts")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Log at debug level")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return g.load()
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return g.close()
	}

	cmd.AddCommand(newReportCmd(g))
	cmd.AddCommand(newTitlesCmd(g))
	cmd.AddCommand(newConfigCmd(g))

	return cmd
}

// load reads the configuration, applies flag overrides and opens the log
func (g *globalOptions) load() error {
	// The log file location comes from the config, so loading it is silent
	bootstrap := slog.New(slog.DiscardHandler)
	if g.configPath != "" {
		g.cfgSvc = config.NewConfigServiceAt(g.configPath, bootstrap)
	} else {
		g.cfgSvc = config.NewConfigService(bootstrap)
	}
	cfg, err := g.cfgSvc.Load()
	if err != nil {
		return err
	}
	if g.memberID != "" {
		cfg.Member.ID = g.memberID
	}
	if g.preset != "" {
		if err := cfg.ApplyPreset(g.preset, true); err != nil {
			return err
		}
	}
	if g.debug {
		cfg.Logging.Level = "debug"
	}
	g.cfg = cfg

	logger, err := logging.Setup(logging.Config{Level: cfg.Logging.Level, FilePath: cfg.Logging.File})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	g.logger = logger
	g.logger.Info("config_loaded", "path", g.cfgSvc.Path(), "preset", cfg.Preset, "member", cfg.Member.ID)
	return nil
}

func (g *globalOptions) close() error {
	if g.bus != nil {
		g.bus.Close()
	}
	if g.logger != nil {
		return g.logger.Close()
	}
	return nil
}

// newClient builds the API client from the loaded configuration
func (g *globalOptions) newClient() (*api.Client, error) {
	return api.NewClient(g.cfg.API.BaseURL, g.cfg.API.RegistryURL, api.Options{
		Timeout:   time.Duration(g.cfg.API.TimeoutSeconds) * time.Second,
		CacheSize: g.cfg.API.CacheSize,
		Logger:    g.logger.Logger,
	})
}

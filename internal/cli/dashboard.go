package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"partrep/internal/config"
	"partrep/internal/coverage"
	"partrep/internal/domain"
	"partrep/internal/eventbus"
	"partrep/internal/filter"
	"partrep/internal/search"
	"partrep/internal/ui"
)

// dashboardEvents are forwarded from the bus into the program
var dashboardEvents = []eventbus.EventType{
	domain.EventCoverageUpdated,
	domain.EventLoadStateChanged,
	domain.EventFetchFailed,
	domain.EventConfigChanged,
}

func runDashboard(ctx context.Context, g *globalOptions) error {
	cfg := g.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := g.logger.Logger

	client, err := g.newClient()
	if err != nil {
		return err
	}

	g.bus = eventbus.New(logger)

	coord := filter.New(client, filter.Options{
		MemberID:     cfg.Member.ID,
		LoadingDelay: time.Duration(cfg.Filters.LoadingDelayMs) * time.Millisecond,
		FetchTimeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Paths:        coverage.DefaultPaths(),
		Bus:          g.bus,
		Logger:       logger,
	})
	defer coord.Close()

	proxy := search.NewProxy(logger)
	defer proxy.Close()

	model := ui.NewModel(ctx, ui.Options{
		Config:      cfg,
		Coordinator: coord,
		Search:      proxy,
		Titles:      client,
		Bus:         g.bus,
		Logger:      logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	for _, t := range dashboardEvents {
		unsubscribe := g.bus.Subscribe(t, func(e eventbus.DomainEvent) {
			p.Send(ui.EventMsg{Event: e})
		})
		defer unsubscribe()
	}

	if _, err := os.Stat(g.cfgSvc.Path()); err == nil {
		watcher := config.NewConfigServiceWithBus(g.cfgSvc.Path(), g.bus, logger)
		err := watcher.Watch(func(next *config.Config) {
			g.logger.SetLevel(next.Logging.Level)
			coord.SetLoadingDelay(time.Duration(next.Filters.LoadingDelayMs) * time.Millisecond)
			// the client and coordinator keep the startup member and endpoints
			next.Member = cfg.Member
			next.API = cfg.API
			next.Preset = cfg.Preset
			p.Send(ui.ConfigReloadedMsg{Config: next})
			logger.Info("config_applied", "level", next.Logging.Level, "loading_delay_ms", next.Filters.LoadingDelayMs)
		})
		if err != nil {
			logger.Warn("config_watch_failed", "path", g.cfgSvc.Path(), "error", err)
		}
	}

	logger.Info("dashboard_started", "member", cfg.Member.ID, "preset", cfg.Preset)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	logger.Info("dashboard_stopped")
	return nil
}

package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"
	"financas/internal/settings"
	"financas/internal/view"
)

// Screen names a page whose data is loaded at startup.
type Screen string

const (
	ScreenDashboard    Screen = "dashboard"
	ScreenTransactions Screen = "transactions"
	ScreenGoals        Screen = "goals"
	ScreenNames        Screen = "names"
	ScreenSecurity     Screen = "security"
)

// Session owns everything one user sees: the settings snapshot, the page
// state and the services writing to it.
type Session struct {
	Store        *settings.Store
	Page         *view.Page
	Loader       *Loader
	Orchestrator *Orchestrator

	logger *log.Logger
}

func NewSession(gw gateway.Gateway, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Discard()
	}
	store := settings.NewStore(gw, logger)
	page := view.NewPage()
	loader := NewLoader(gw, store, page, logger)
	s := &Session{
		Store:        store,
		Page:         page,
		Loader:       loader,
		Orchestrator: NewOrchestrator(gw, store, page, loader, logger),
		logger:       logger.WithComponent(log.ComponentSession),
	}
	page.SetUserOptions(store.UserOptions())
	store.OnChange(func(core.Settings) {
		page.SetUserOptions(store.UserOptions())
	})
	return s
}

// Start refreshes settings and loads the given screens concurrently. Loads
// render with whatever names are known when they finish. Every task runs
// to completion; the first error is returned.
func (s *Session) Start(ctx context.Context, screens ...Screen) error {
	loads := make([]func(context.Context) error, 0, len(screens))
	for _, sc := range screens {
		load, err := s.loaderFor(sc)
		if err != nil {
			return err
		}
		loads = append(loads, load)
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := s.Loader.RefreshSettings(ctx); err != nil {
			s.logger.WarnContext(ctx, "Startup settings refresh failed, using default names", log.FieldError, err)
			return err
		}
		return nil
	})

	for _, load := range loads {
		g.Go(func() error { return load(ctx) })
	}

	err := g.Wait()
	s.logger.DebugContext(ctx, "Session started", "screens", len(screens), log.FieldSuccess, err == nil)
	return err
}

func (s *Session) loaderFor(sc Screen) (func(context.Context) error, error) {
	switch sc {
	case ScreenDashboard:
		return s.Loader.LoadDashboard, nil
	case ScreenTransactions:
		return s.Loader.LoadTransactions, nil
	case ScreenGoals:
		return s.Loader.LoadGoals, nil
	case ScreenNames:
		return s.Loader.LoadNamesForm, nil
	case ScreenSecurity:
		return s.Loader.LoadSecurityForm, nil
	}
	return nil, fmt.Errorf("unknown screen %q", sc)
}

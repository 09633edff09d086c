package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"financas/internal/backend"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/services"
)

var errAccessDenied = errors.New("PIN incorreto")

// withSession opens the configured backend, unlocks it when a PIN is
// stored and runs fn against a fresh session.
func (a *app) withSession(fn func(context.Context, *services.Session) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			a.logger.Warn("Backend cleanup failed", "error", err)
		}
	}()

	sess := services.NewSession(res.Backend, a.logger)
	if err := a.unlock(ctx, sess); err != nil {
		return err
	}
	return fn(ctx, sess)
}

func (a *app) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	cfg, err := cli.LoadAndValidateConfig(a.logger, a.urls)
	if err != nil {
		return nil, err
	}
	return a.openBackendFrom(ctx, cfg)
}

func (a *app) openBackendFrom(ctx context.Context, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(a.logger).CreateBackend(ctx, bcfg)
}

// unlock fetches settings and, if a PIN is stored, asks for it. Without
// settings the lock state is unknown, so nothing is shown.
func (a *app) unlock(ctx context.Context, sess *services.Session) error {
	if err := sess.Loader.RefreshSettings(ctx); err != nil {
		return fmt.Errorf("%s%s", services.MsgLoginCheckFailed, services.ReasonOr(err, services.MsgConnectionError))
	}
	if _, locked := sess.Store.PIN(); !locked {
		sess.Page.SetAccessGranted(true)
		return nil
	}
	pin, err := cli.ReadPIN(a.in, a.out, "PIN: ")
	if err != nil {
		return err
	}
	return a.report(sess, sess.Orchestrator.Login(ctx, pin))
}

// report prints what the mutation left in the notification queue and
// turns a failed outcome into an error. The failure message itself is
// carried by the error only.
func (a *app) report(sess *services.Session, o services.Outcome) error {
	for _, n := range sess.Page.DrainNotifications() {
		if !o.OK() && n.Message == o.Message {
			continue
		}
		fmt.Fprintln(a.out, n.Message)
	}
	switch {
	case o.OK():
		return nil
	case o.Status == services.StatusDenied:
		return errAccessDenied
	case o.Message != "":
		return errors.New(o.Message)
	}
	return o.Err
}

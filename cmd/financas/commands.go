package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/core"
	apphttp "financas/internal/http"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/services"
	"financas/internal/worker"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func (a *app) dashboard(args []string) error {
	if err := newFlagSet("dashboard").Parse(args); err != nil {
		return errUsage
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		loadErr := sess.Loader.LoadDashboard(ctx)
		v, ok := sess.Page.Dashboard.Get()
		if !ok {
			return a.report(sess, services.Outcome{Status: services.StatusFailed, Err: loadErr})
		}
		printDashboard(a.out, v)
		return nil
	})
}

func (a *app) transactions(args []string) error {
	fs := newFlagSet("transactions")
	query := fs.String("q", "", "fuzzy filter on description, category or person")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		loadErr := sess.Loader.LoadTransactions(ctx)
		v, _ := sess.Page.Transactions.Get()
		v.Rows = ledger.Filter(v.Rows, *query)
		printTransactions(a.out, v)
		return loadErr
	})
}

func (a *app) goals(args []string) error {
	if err := newFlagSet("goals").Parse(args); err != nil {
		return errUsage
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		loadErr := sess.Loader.LoadGoals(ctx)
		v, _ := sess.Page.Goals.Get()
		printGoals(a.out, v)
		if loadErr != nil {
			return a.report(sess, services.Outcome{Status: services.StatusFailed, Err: loadErr})
		}
		return nil
	})
}

func (a *app) addTransaction(args []string) error {
	fs := newFlagSet("add-tx")
	date := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "category")
	amount := fs.String("amount", "", "amount, e.g. 89.90 or 89,90")
	txType := fs.String("type", string(core.Expense), "income or expense")
	user := fs.String("user", string(core.RoleShared), "user1, user2 or shared")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	amt, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	in := core.NewTransaction{
		Date:        *date,
		Description: *desc,
		Category:    *category,
		Amount:      amt,
		Type:        core.TxType(*txType),
		User:        core.Role(*user),
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		return a.report(sess, sess.Orchestrator.AddTransaction(ctx, in))
	})
}

func (a *app) deleteTransaction(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id := core.RecordID(args[0])
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		if err := a.report(sess, sess.Orchestrator.DeleteTransaction(ctx, id)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Transação %s excluída.\n", id)
		return nil
	})
}

func (a *app) addGoal(args []string) error {
	fs := newFlagSet("add-goal")
	name := fs.String("name", "", "goal name")
	target := fs.String("target", "", "target amount")
	current := fs.String("current", "0", "amount saved so far")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	t, err := parseAmount(*target)
	if err != nil {
		return err
	}
	c, err := parseAmount(*current)
	if err != nil {
		return err
	}
	in := core.NewGoal{Name: *name, Target: t, Current: c}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		return a.report(sess, sess.Orchestrator.AddGoal(ctx, in))
	})
}

func (a *app) updateGoal(args []string) error {
	fs := newFlagSet("update-goal")
	id := fs.String("id", "", "goal id")
	current := fs.String("current", "", "new amount saved")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	c, err := parseAmount(*current)
	if err != nil {
		return err
	}
	u := core.GoalUpdate{ID: core.RecordID(*id), Current: c}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		return a.report(sess, sess.Orchestrator.UpdateGoal(ctx, u))
	})
}

// setNames saves both names. A flag left out keeps the stored name, as the
// prefilled form would.
func (a *app) setNames(args []string) error {
	fs := newFlagSet("set-names")
	user1 := fs.String("user1", "", "display name of the first person")
	user2 := fs.String("user2", "", "display name of the second person")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	given := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })
	if len(given) == 0 {
		return errUsage
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		if err := sess.Loader.LoadNamesForm(ctx); err != nil {
			return a.report(sess, services.Outcome{Status: services.StatusFailed, Err: err})
		}
		form := sess.Page.NamesForm()
		if given["user1"] {
			form.User1 = *user1
		}
		if given["user2"] {
			form.User2 = *user2
		}
		return a.report(sess, sess.Orchestrator.SaveNames(ctx, form.User1, form.User2))
	})
}

func (a *app) setPIN(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		pin, err := cli.ReadPIN(a.in, a.out, "Novo PIN: ")
		if err != nil {
			return err
		}
		return a.report(sess, sess.Orchestrator.SavePIN(ctx, pin))
	})
}

// login only checks the PIN; unlocking already asked for it.
func (a *app) login(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return a.withSession(func(ctx context.Context, sess *services.Session) error {
		if _, locked := sess.Store.PIN(); !locked {
			fmt.Fprintln(a.out, "Nenhum PIN definido; acesso liberado.")
			return nil
		}
		fmt.Fprintln(a.out, "Acesso liberado.")
		return nil
	})
}

func (a *app) setURL(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.urls.Save(strings.TrimSpace(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "URL salva em %s\n", a.urls.Path)
	return nil
}

func (a *app) serve(args []string) error {
	if err := newFlagSet("serve").Parse(args); err != nil {
		return errUsage
	}
	cfg, err := cli.LoadAndValidateConfig(a.logger, a.urls)
	if err != nil {
		return err
	}
	res, err := a.openBackendFrom(context.Background(), cfg)
	if err != nil {
		return err
	}

	sess := services.NewSession(res.Backend, a.logger)
	srv := apphttp.NewServer(":"+cfg.Port, sess, a.logger, apphttp.WithExec(res.Dispatcher, cfg.ExecToken))
	if cfg.ExecToken == "" {
		a.logger.Info("EXEC_TOKEN not set, /exec disabled")
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(a.logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			a.logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	go func() {
		err := sess.Start(ctx, services.ScreenDashboard, services.ScreenTransactions, services.ScreenGoals)
		if err != nil {
			a.logger.Warn("Initial load incomplete", log.FieldError, err)
		}
	}()

	a.logger.Info("Starting financas server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = res.Cleanup()
		return fmt.Errorf("serve on port %s: %w", cfg.Port, err)
	}
	cli.WaitForShutdown(ctx, done)
	a.logger.Info("Server stopped gracefully")
	return nil
}

func (a *app) events(args []string) error {
	if err := newFlagSet("events").Parse(args); err != nil {
		return errUsage
	}
	cfg, err := cli.LoadAndValidateConfig(a.logger, a.urls)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, a.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := worker.NewFeed(a.out, a.logger)
	err = client.ConsumeMutations(ctx, feed.HandleMutation)
	a.logger.Info("Event feed stopped", "events", feed.Seen())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// parseAmount reads a typed amount; zero passes so that the orchestrator
// reports it like any other invalid input.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := core.ParseNonNegativeAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("valor inválido %q", s)
	}
	return d, nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/log"
)

const usage = `usage: financas <command> [flags]

Commands:
  serve                      run the JSON API (and /exec) on $PORT
  events                     print mutation events from AMQP as they arrive
  dashboard                  show totals, the split per person and recent transactions
  transactions [-q query]    list transactions, optionally filtered
  goals                      list savings goals
  add-tx [flags]             add a transaction
  delete-tx <id>             delete a transaction
  add-goal [flags]           create a goal
  update-goal -id ID -current AMOUNT
  set-names -user1 A -user2 B
  set-pin                    store a new 4-digit access PIN
  login                      check the access PIN
  set-url <url>              store the backend URL used when API_URL is unset
`

var errUsage = errors.New("invalid usage")

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stderr)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a := &app{
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logger,
		urls:   config.DefaultURLFile(),
	}
	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "financas:", err)
		os.Exit(1)
	}
}

type app struct {
	in     *os.File
	out    io.Writer
	logger *log.Logger
	urls   config.URLFile
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "serve":
		return a.serve(args)
	case "events":
		return a.events(args)
	case "set-url":
		return a.setURL(args)
	case "dashboard":
		return a.dashboard(args)
	case "transactions":
		return a.transactions(args)
	case "goals":
		return a.goals(args)
	case "add-tx":
		return a.addTransaction(args)
	case "delete-tx":
		return a.deleteTransaction(args)
	case "add-goal":
		return a.addGoal(args)
	case "update-goal":
		return a.updateGoal(args)
	case "set-names":
		return a.setNames(args)
	case "set-pin":
		return a.setPIN(args)
	case "login":
		return a.login(args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financas/internal/core"
	"financas/internal/log"
)

// Caller performs one method call and returns the raw envelope. A non-nil
// error means no envelope was obtained.
type Caller interface {
	Call(ctx context.Context, method string, params any) (Envelope, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, method string, params any) (Envelope, error)

func (f CallerFunc) Call(ctx context.Context, method string, params any) (Envelope, error) {
	return f(ctx, method, params)
}

// IDParams is the parameter object of deleteTransacao.
type IDParams struct {
	ID core.RecordID `json:"id"`
}

// SettingsParams is the parameter object of saveSettings.
type SettingsParams struct {
	Settings core.Settings `json:"settings"`
}

// Client implements Gateway on top of a Caller. Every call runs under its
// own deadline; a Caller that ignores the context is abandoned when the
// deadline passes.
type Client struct {
	caller  Caller
	timeout time.Duration
	logger  *log.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient wraps caller. A zero timeout leaves calls bounded only by the
// caller's context.
func NewClient(caller Caller, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{caller: caller, timeout: timeout, logger: logger.WithComponent(log.ComponentGateway)}
}

type callResult struct {
	env Envelope
	err error
}

func (c *Client) call(ctx context.Context, method string, params any) (Envelope, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	done := make(chan callResult, 1)
	go func() {
		env, err := c.caller.Call(ctx, method, params)
		done <- callResult{env, err}
	}()
	select {
	case r := <-done:
		return r.env, r.err
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, method string, params any, out any) error {
	return c.run(ctx, method, params, out, false)
}

// doWrite is do for writes that echo the stored record. Backends may leave
// data out; the write still happened, so out is then left as it is.
func (c *Client) doWrite(ctx context.Context, method string, params any, out any) error {
	return c.run(ctx, method, params, out, true)
}

func (c *Client) run(ctx context.Context, method string, params any, out any, dataOptional bool) error {
	start := time.Now()
	env, err := c.call(ctx, method, params)
	if err != nil {
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
		}
		c.logger.WarnContext(ctx, "Gateway call failed",
			log.FieldGateway, method,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldError, err)
		return err
	}
	if dataOptional && env.Success && !env.HasData() {
		c.logger.DebugContext(ctx, "Gateway write returned no record", log.FieldGateway, method)
		out = nil
	}
	if err := Decode(method, env, out); err != nil {
		c.logger.WarnContext(ctx, "Gateway call rejected",
			log.FieldGateway, method,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldError, err)
		return err
	}
	c.logger.DebugContext(ctx, "Gateway call completed",
		log.FieldGateway, method,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (c *Client) GetDashboard(ctx context.Context) (core.Dashboard, error) {
	var d core.Dashboard
	err := c.do(ctx, MethodGetDashboard, nil, &d)
	return d, err
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.do(ctx, MethodListTransactions, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *Client) AddTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error) {
	var created core.Transaction
	err := c.doWrite(ctx, MethodAddTransaction, tx, &created)
	return created, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id core.RecordID) error {
	return c.do(ctx, MethodDeleteTransaction, IDParams{ID: id}, nil)
}

func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	var goals []core.Goal
	if err := c.do(ctx, MethodListGoals, nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (c *Client) AddGoal(ctx context.Context, g core.NewGoal) (core.Goal, error) {
	var created core.Goal
	err := c.doWrite(ctx, MethodAddGoal, g, &created)
	return created, err
}

func (c *Client) UpdateGoal(ctx context.Context, u core.GoalUpdate) error {
	return c.do(ctx, MethodUpdateGoal, u, nil)
}

func (c *Client) GetSettings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	if err := c.do(ctx, MethodGetSettings, nil, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) SaveSettings(ctx context.Context, partial core.Settings) error {
	return c.do(ctx, MethodSaveSettings, SettingsParams{Settings: partial}, nil)
}

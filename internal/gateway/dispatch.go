package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"financas/internal/core"
)

// ErrMethodNotFound is the message returned for unknown method names.
const ErrMethodNotFound = "Method not found"

// ErrPINNotWritable rejects a saveSettings that carries the access PIN
// through a redacted dispatcher.
const ErrPINNotWritable = "access_pin cannot be changed here"

// Dispatcher serves method calls from a typed backend. It is the server
// half of the envelope protocol: the HTTP exec endpoint and in-process
// clients both go through it.
type Dispatcher struct {
	backend   Gateway
	redactPIN bool
}

var _ Caller = (*Dispatcher)(nil)

func NewDispatcher(backend Gateway) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// Redacted returns a dispatcher over the same backend that never hands out
// the access PIN and refuses to change it. It is the one to expose to
// other processes.
func (d *Dispatcher) Redacted() *Dispatcher {
	return &Dispatcher{backend: d.backend, redactPIN: true}
}

// Exec handles a wire request body of the form {"method": name, ...params}.
func (d *Dispatcher) Exec(ctx context.Context, body []byte) (Envelope, error) {
	var head struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return Fail("invalid request body"), nil
	}
	return d.Call(ctx, head.Method, json.RawMessage(body))
}

// Call decodes params for method and runs it against the backend. Backend
// failures become failure envelopes; only context errors are returned as
// errors.
func (d *Dispatcher) Call(ctx context.Context, method string, params any) (Envelope, error) {
	raw, err := toRaw(params)
	if err != nil {
		return Fail(err.Error()), nil
	}
	var (
		data  any
		opErr error
	)
	switch method {
	case MethodGetDashboard:
		data, opErr = d.backend.GetDashboard(ctx)
	case MethodListTransactions:
		var txs []core.Transaction
		txs, opErr = d.backend.ListTransactions(ctx)
		if txs == nil {
			txs = []core.Transaction{}
		}
		data = txs
	case MethodAddTransaction:
		var in core.NewTransaction
		if err := json.Unmarshal(raw, &in); err != nil {
			return Fail("invalid transaction: " + err.Error()), nil
		}
		data, opErr = d.backend.AddTransaction(ctx, in)
	case MethodDeleteTransaction:
		var in IDParams
		if err := json.Unmarshal(raw, &in); err != nil {
			return Fail("invalid id: " + err.Error()), nil
		}
		opErr = d.backend.DeleteTransaction(ctx, in.ID)
	case MethodListGoals:
		var goals []core.Goal
		goals, opErr = d.backend.ListGoals(ctx)
		if goals == nil {
			goals = []core.Goal{}
		}
		data = goals
	case MethodAddGoal:
		var in core.NewGoal
		if err := json.Unmarshal(raw, &in); err != nil {
			return Fail("invalid goal: " + err.Error()), nil
		}
		data, opErr = d.backend.AddGoal(ctx, in)
	case MethodUpdateGoal:
		var in core.GoalUpdate
		if err := json.Unmarshal(raw, &in); err != nil {
			return Fail("invalid goal update: " + err.Error()), nil
		}
		opErr = d.backend.UpdateGoal(ctx, in)
	case MethodGetSettings:
		var s core.Settings
		s, opErr = d.backend.GetSettings(ctx)
		s = s.Clone()
		if d.redactPIN {
			delete(s, core.KeyAccessPIN)
		}
		data = s
	case MethodSaveSettings:
		var in SettingsParams
		if err := json.Unmarshal(raw, &in); err != nil {
			return Fail("invalid settings: " + err.Error()), nil
		}
		if _, ok := in.Settings[core.KeyAccessPIN]; ok && d.redactPIN {
			return Fail(ErrPINNotWritable), nil
		}
		opErr = d.backend.SaveSettings(ctx, in.Settings)
	default:
		return Fail(ErrMethodNotFound), nil
	}

	if opErr != nil {
		if errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded) {
			return Envelope{}, opErr
		}
		return Fail(opErr.Error()), nil
	}
	return OK(data)
}

func toRaw(params any) (json.RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return json.RawMessage("{}"), nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return b, nil
}

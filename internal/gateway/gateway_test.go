package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/gateway/memory"
)

func newClient(t *testing.T) *gateway.Client {
	t.Helper()
	store := memory.New(memory.DemoSeed())
	return gateway.NewClient(gateway.NewDispatcher(store), time.Second, nil)
}

func TestClientRoundTripThroughDispatcher(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	created, err := c.AddTransaction(ctx, core.NewTransaction{
		Date:        "2024-03-01",
		Description: "Cinema",
		Category:    "Lazer",
		Amount:      decimal.RequireFromString("64.90"),
		Type:        core.Expense,
		User:        core.RoleUser2,
	})
	if err != nil {
		t.Fatalf("unexpected add error %v", err)
	}
	if created.ID == "" || !created.Amount.Equal(decimal.RequireFromString("64.9")) {
		t.Fatalf("unexpected created %+v", created)
	}

	txs, err := c.ListTransactions(ctx)
	if err != nil || len(txs) != 4 {
		t.Fatalf("expected 4 transactions, got %d (err=%v)", len(txs), err)
	}
	if err := c.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("unexpected delete error %v", err)
	}

	if err := c.SaveSettings(ctx, core.Settings{core.KeyUser1Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	s, err := c.GetSettings(ctx)
	if err != nil || s[core.KeyUser1Name] != "Ana" {
		t.Fatalf("unexpected settings %v (err=%v)", s, err)
	}
}

func TestClientApplicationError(t *testing.T) {
	c := newClient(t)
	err := c.DeleteTransaction(context.Background(), "missing")
	var appErr *gateway.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %v", err)
	}
	if appErr.Method != gateway.MethodDeleteTransaction {
		t.Fatalf("unexpected method %q", appErr.Method)
	}
	if errors.Is(err, gateway.ErrTransport) {
		t.Fatalf("application error classified as transport")
	}
}

func TestClientTimeoutIsTransport(t *testing.T) {
	hang := gateway.CallerFunc(func(ctx context.Context, method string, params any) (gateway.Envelope, error) {
		time.Sleep(time.Second)
		return gateway.Envelope{Success: true}, nil
	})
	c := gateway.NewClient(hang, 20*time.Millisecond, nil)

	start := time.Now()
	_, err := c.ListGoals(context.Background())
	if !errors.Is(err, gateway.ErrTransport) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected transport timeout, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("client waited for a hung caller")
	}
}

func TestClientMissingDataIsTransport(t *testing.T) {
	empty := gateway.CallerFunc(func(ctx context.Context, method string, params any) (gateway.Envelope, error) {
		return gateway.Envelope{Success: true}, nil
	})
	c := gateway.NewClient(empty, time.Second, nil)
	ctx := context.Background()

	reads := map[string]func() error{
		"dashboard":    func() error { _, err := c.GetDashboard(ctx); return err },
		"transactions": func() error { _, err := c.ListTransactions(ctx); return err },
		"goals":        func() error { _, err := c.ListGoals(ctx); return err },
		"settings":     func() error { _, err := c.GetSettings(ctx); return err },
	}
	for name, read := range reads {
		if err := read(); !errors.Is(err, gateway.ErrTransport) {
			t.Errorf("%s: expected transport error, got %v", name, err)
		}
	}
}

func TestClientWritesAcceptMissingData(t *testing.T) {
	for _, data := range []string{"", "null"} {
		empty := gateway.CallerFunc(func(ctx context.Context, method string, params any) (gateway.Envelope, error) {
			return gateway.Envelope{Success: true, Data: json.RawMessage(data)}, nil
		})
		c := gateway.NewClient(empty, time.Second, nil)
		ctx := context.Background()

		tx, err := c.AddTransaction(ctx, core.NewTransaction{Description: "x"})
		if err != nil || tx.ID != "" {
			t.Fatalf("data %q: add transaction %+v err=%v", data, tx, err)
		}
		g, err := c.AddGoal(ctx, core.NewGoal{Name: "x"})
		if err != nil || g.ID != "" {
			t.Fatalf("data %q: add goal %+v err=%v", data, g, err)
		}
		if err := c.UpdateGoal(ctx, core.GoalUpdate{ID: "1"}); err != nil {
			t.Fatalf("data %q: update goal %v", data, err)
		}
		if err := c.DeleteTransaction(ctx, "1"); err != nil {
			t.Fatalf("data %q: delete %v", data, err)
		}
		if err := c.SaveSettings(ctx, core.Settings{"k": "v"}); err != nil {
			t.Fatalf("data %q: save settings %v", data, err)
		}
	}
}

func TestClientWriteRejectionStillFails(t *testing.T) {
	reject := gateway.CallerFunc(func(ctx context.Context, method string, params any) (gateway.Envelope, error) {
		return gateway.Fail("quota"), nil
	})
	c := gateway.NewClient(reject, time.Second, nil)
	var appErr *gateway.ApplicationError
	if _, err := c.AddGoal(context.Background(), core.NewGoal{Name: "x"}); !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %v", err)
	}
}

func TestDispatcherRedacted(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.Seed{Settings: core.Settings{core.KeyAccessPIN: "1234", core.KeyUser1Name: "Ana"}})
	full := gateway.NewDispatcher(store)
	redacted := full.Redacted()

	env, err := full.Call(ctx, gateway.MethodGetSettings, nil)
	if err != nil || !strings.Contains(string(env.Data), "1234") {
		t.Fatalf("in-process dispatcher must keep the pin: %s %v", env.Data, err)
	}

	env, err = redacted.Call(ctx, gateway.MethodGetSettings, nil)
	if err != nil || !env.Success {
		t.Fatalf("redacted getSettings %+v %v", env, err)
	}
	var got core.Settings
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got[core.KeyAccessPIN]; ok || got[core.KeyUser1Name] != "Ana" {
		t.Fatalf("redacted settings %v", got)
	}

	env, _ = redacted.Call(ctx, gateway.MethodSaveSettings, gateway.SettingsParams{Settings: core.Settings{core.KeyAccessPIN: ""}})
	if env.Success || env.Error != gateway.ErrPINNotWritable {
		t.Fatalf("redacted saveSettings of the pin %+v", env)
	}
	if s, _ := store.GetSettings(ctx); s[core.KeyAccessPIN] != "1234" {
		t.Fatalf("pin changed through redacted dispatcher: %v", s)
	}
	// the original keeps full access
	if env, _ := full.Call(ctx, gateway.MethodSaveSettings, gateway.SettingsParams{Settings: core.Settings{core.KeyAccessPIN: "4321"}}); !env.Success {
		t.Fatalf("full saveSettings %+v", env)
	}
}

func TestDispatcherUnknownMethod(t *testing.T) {
	d := gateway.NewDispatcher(memory.New(memory.Seed{}))
	env, err := d.Exec(context.Background(), []byte(`{"method":"dropTables"}`))
	if err != nil {
		t.Fatal(err)
	}
	if env.Success || env.Error != gateway.ErrMethodNotFound {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestDispatcherExecFlatParams(t *testing.T) {
	d := gateway.NewDispatcher(memory.New(memory.Seed{}))
	body := `{"method":"addMeta","name":"Carro","target":30000,"current":0}`
	env, err := d.Exec(context.Background(), []byte(body))
	if err != nil || !env.Success {
		t.Fatalf("unexpected result %+v err=%v", env, err)
	}
	var g core.Goal
	if err := json.Unmarshal(env.Data, &g); err != nil {
		t.Fatal(err)
	}
	if g.Name != "Carro" || !g.Target.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("unexpected goal %+v", g)
	}

	env, _ = d.Exec(context.Background(), []byte(`{"method":"addMeta","name":"","target":1}`))
	if env.Success {
		t.Fatalf("expected validation failure envelope")
	}
}

func TestParseEnvelope(t *testing.T) {
	cases := []struct {
		body      string
		success   bool
		transport bool
	}{
		{`{"success":true,"data":[]}`, true, false},
		{`{"success":false,"error":"boom"}`, false, false},
		{`{"error":"Failed to fetch"}`, false, true},
		{`<html>`, false, true},
	}
	for _, tc := range cases {
		env, err := gateway.ParseEnvelope([]byte(tc.body))
		if tc.transport {
			if !errors.Is(err, gateway.ErrTransport) {
				t.Fatalf("%s: expected transport error, got %v", tc.body, err)
			}
			continue
		}
		if err != nil || env.Success != tc.success {
			t.Fatalf("%s: unexpected %+v err=%v", tc.body, env, err)
		}
	}
}

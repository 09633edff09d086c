// Package sheets stores transactions, goals and settings in a Google
// Sheets spreadsheet, one tab each.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"
)

// Config selects the spreadsheet, its tabs and the service account.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	GoalsSheet        string
	SettingsSheet     string
	CredentialsJSON   string
	CredentialsFile   string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	txSheet       string
	goalSheet     string
	configSheet   string
	logger        *log.Logger
	newID         func() core.RecordID

	// sheet title -> numeric sheet id, needed for row deletion
	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wires an existing service; tests point it at a fake
// endpoint.
func NewWithService(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		txSheet:       orDefault(cfg.TransactionsSheet, "Transacoes"),
		goalSheet:     orDefault(cfg.GoalsSheet, "Metas"),
		configSheet:   orDefault(cfg.SettingsSheet, "Config"),
		logger:        logger.WithComponent(log.ComponentSheets),
		newID:         func() core.RecordID { return core.RecordID(uuid.NewString()) },
		sheetIDs:      map[string]int64{},
	}
}

func readCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// readRows returns the data rows of a tab, header excluded.
func (c *Client) readRows(ctx context.Context, sheet, cols string) ([][]any, error) {
	rng := fmt.Sprintf("%s!A2:%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheet, cols string, row []any) error {
	rng := fmt.Sprintf("%s!A:%s", sheet, cols)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}

func (c *Client) GetDashboard(ctx context.Context) (core.Dashboard, error) {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}
	return core.Summarize(txs, core.RecentLimit), nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, c.txSheet, "G")
	if err != nil {
		return nil, err
	}
	txs, skipped := parseTransactionRows(rows)
	if skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped unreadable transaction rows", "sheet", c.txSheet, "skipped", skipped)
	}
	return txs, nil
}

func (c *Client) AddTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx := in.WithID(c.newID())
	if err := c.appendRow(ctx, c.txSheet, "G", transactionRow(tx)); err != nil {
		return core.Transaction{}, err
	}
	c.logger.InfoContext(ctx, "Transaction appended", log.FieldRecordID, string(tx.ID), "sheet", c.txSheet)
	return tx, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id core.RecordID) error {
	rows, err := c.readRows(ctx, c.txSheet, "A")
	if err != nil {
		return err
	}
	idx := rowOf(rows, string(id))
	if idx < 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	sid, err := c.sheetID(ctx, c.txSheet)
	if err != nil {
		return err
	}
	// +1 skips the header row. Sheet id 0 is valid, so it is always sent.
	start := int64(idx + 1)
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:         sid,
			Dimension:       "ROWS",
			StartIndex:      start,
			EndIndex:        start + 1,
			ForceSendFields: []string{"SheetId"},
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", start+1, c.txSheet, err)
	}
	return nil
}

func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := c.readRows(ctx, c.goalSheet, "D")
	if err != nil {
		return nil, err
	}
	goals, skipped := parseGoalRows(rows)
	if skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped unreadable goal rows", "sheet", c.goalSheet, "skipped", skipped)
	}
	return goals, nil
}

func (c *Client) AddGoal(ctx context.Context, in core.NewGoal) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	g := in.WithID(c.newID())
	if err := c.appendRow(ctx, c.goalSheet, "D", goalRow(g)); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (c *Client) UpdateGoal(ctx context.Context, u core.GoalUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	rows, err := c.readRows(ctx, c.goalSheet, "A")
	if err != nil {
		return err
	}
	idx := rowOf(rows, string(u.ID))
	if idx < 0 {
		return fmt.Errorf("goal %s not found", u.ID)
	}
	rng := fmt.Sprintf("%s!D%d", c.goalSheet, idx+2)
	vr := &gsheet.ValueRange{Values: [][]any{{u.Current.InexactFloat64()}}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) GetSettings(ctx context.Context) (core.Settings, error) {
	rows, err := c.readRows(ctx, c.configSheet, "B")
	if err != nil {
		return nil, err
	}
	return parseSettingsRows(rows), nil
}

// SaveSettings overwrites the value of existing keys in place and appends
// new keys at the bottom.
func (c *Client) SaveSettings(ctx context.Context, partial core.Settings) error {
	if len(partial) == 0 {
		return nil
	}
	rows, err := c.readRows(ctx, c.configSheet, "B")
	if err != nil {
		return err
	}
	var updates []*gsheet.ValueRange
	var added [][]any
	for k, v := range partial {
		if idx := rowOf(rows, k); idx >= 0 {
			updates = append(updates, &gsheet.ValueRange{
				Range:  fmt.Sprintf("%s!B%d", c.configSheet, idx+2),
				Values: [][]any{{v}},
			})
			continue
		}
		added = append(added, []any{k, v})
	}
	if len(updates) > 0 {
		req := &gsheet.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: updates}
		if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
	}
	if len(added) > 0 {
		rng := fmt.Sprintf("%s!A:B", c.configSheet)
		vr := &gsheet.ValueRange{Values: added}
		if _, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
			return fmt.Errorf("append settings: %w", err)
		}
	}
	return nil
}

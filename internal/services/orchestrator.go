package services

import (
	"context"
	"errors"
	"strings"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"
	"financas/internal/settings"
	"financas/internal/view"
)

type Status string

const (
	StatusSuccess Status = "success"
	// StatusFailed means the backend call failed; nothing changed locally.
	StatusFailed Status = "failed"
	// StatusInvalid means the input was rejected before any call was made.
	StatusInvalid Status = "invalid"
	// StatusDenied is a login with the wrong PIN.
	StatusDenied Status = "denied"
)

// ErrLoginDenied is returned in the outcome of a login with the wrong PIN.
var ErrLoginDenied = errors.New("access denied")

// Outcome is the result of one user-initiated mutation. Message is what was
// shown to the user, if anything.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// Orchestrator runs user-initiated writes: each one validates, marks its
// control loading, calls the backend once and then either reloads the
// affected view or reports the failure. Controls are released on every
// path and nothing is retried.
type Orchestrator struct {
	gw     gateway.Gateway
	store  *settings.Store
	page   *view.Page
	loader *Loader
	logger *log.Logger
}

func NewOrchestrator(gw gateway.Gateway, store *settings.Store, page *view.Page, loader *Loader, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Discard()
	}
	return &Orchestrator{
		gw:     gw,
		store:  store,
		page:   page,
		loader: loader,
		logger: logger.WithComponent(log.ComponentMutation),
	}
}

func (o *Orchestrator) busy(control string) func() {
	o.page.SetControl(control, view.Loading)
	return func() { o.page.SetControl(control, view.Idle) }
}

func (o *Orchestrator) succeed(msg string) Outcome {
	if msg != "" {
		o.page.Notify(view.NotifySuccess, msg)
	}
	return Outcome{Status: StatusSuccess, Message: msg}
}

func (o *Orchestrator) fail(status Status, msg string, err error) Outcome {
	o.page.Notify(view.NotifyError, msg)
	return Outcome{Status: status, Message: msg, Err: err}
}

// reload refreshes a view after a successful write. The write already
// happened, so a failed reload is only logged; the loader reports it.
func (o *Orchestrator) reload(ctx context.Context, load func(context.Context) error) {
	if err := load(ctx); err != nil {
		o.logger.WarnContext(ctx, "Reload after write failed", log.FieldError, err)
	}
}

func (o *Orchestrator) AddTransaction(ctx context.Context, in core.NewTransaction) Outcome {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return o.fail(StatusInvalid, MsgAddFailed+Reason(err), err)
	}

	defer o.busy(view.ControlAddTransaction)()
	tx, err := o.gw.AddTransaction(ctx, in)
	if err != nil {
		o.logger.ErrorContext(ctx, "Add transaction failed", log.FieldError, err)
		return o.fail(StatusFailed, MsgAddFailed+Reason(err), err)
	}

	// Backends may answer without echoing the record.
	fields := log.NewFields().WithTransaction(in.Amount.StringFixed(2), string(in.Type), string(in.User))
	if tx.ID != "" {
		fields = fields.WithRecord(tx.ID.String())
	}
	o.logger.InfoContext(ctx, "Transaction added", fields.ToSlice()...)
	o.page.ResetForm(view.FormTransaction)
	o.reload(ctx, o.loader.LoadTransactions)
	if _, shown := o.page.Dashboard.Get(); shown {
		o.reload(ctx, o.loader.LoadDashboard)
	}
	return o.succeed(MsgTransactionAdded)
}

// DeleteTransaction marks the row pending, deletes it and reloads the whole
// list. If the delete fails the row goes back to normal and the list is
// left as it was.
func (o *Orchestrator) DeleteTransaction(ctx context.Context, id core.RecordID) Outcome {
	if strings.TrimSpace(id.String()) == "" {
		return o.fail(StatusInvalid, MsgDeleteFailed+Reason(core.ErrMissingID), core.ErrMissingID)
	}

	defer o.busy(view.DeleteControl(id))()
	o.page.MarkRow(id, view.RowPending)
	if err := o.gw.DeleteTransaction(ctx, id); err != nil {
		o.page.MarkRow(id, view.RowNormal)
		o.logger.ErrorContext(ctx, "Delete transaction failed", log.FieldRecordID, id.String(), log.FieldError, err)
		return o.fail(StatusFailed, MsgDeleteFailed+ReasonOr(err, MsgUnknownError), err)
	}

	o.logger.InfoContext(ctx, "Transaction deleted", log.FieldRecordID, id.String())
	o.reload(ctx, o.loader.LoadTransactions)
	o.page.MarkRow(id, view.RowNormal)
	if _, shown := o.page.Dashboard.Get(); shown {
		o.reload(ctx, o.loader.LoadDashboard)
	}
	return o.succeed("")
}

func (o *Orchestrator) AddGoal(ctx context.Context, in core.NewGoal) Outcome {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return o.fail(StatusInvalid, MsgGoalFailed+Reason(err), err)
	}

	defer o.busy(view.ControlAddGoal)()
	g, err := o.gw.AddGoal(ctx, in)
	if err != nil {
		o.logger.ErrorContext(ctx, "Add goal failed", log.FieldGoalName, in.Name, log.FieldError, err)
		return o.fail(StatusFailed, MsgGoalFailed+Reason(err), err)
	}

	if g.ID != "" {
		o.logger.InfoContext(ctx, "Goal created", log.FieldRecordID, g.ID.String(), log.FieldGoalName, in.Name)
	} else {
		o.logger.InfoContext(ctx, "Goal created", log.FieldGoalName, in.Name)
	}
	o.page.ResetForm(view.FormGoal)
	o.reload(ctx, o.loader.LoadGoals)
	return o.succeed(MsgGoalCreated)
}

func (o *Orchestrator) UpdateGoal(ctx context.Context, u core.GoalUpdate) Outcome {
	if err := u.Validate(); err != nil {
		return o.fail(StatusInvalid, MsgUpdateFailed, err)
	}

	defer o.busy(view.UpdateGoalControl(u.ID))()
	if err := o.gw.UpdateGoal(ctx, u); err != nil {
		o.logger.ErrorContext(ctx, "Update goal failed", log.FieldRecordID, u.ID.String(), log.FieldError, err)
		return o.fail(StatusFailed, MsgUpdateFailed, err)
	}

	o.reload(ctx, o.loader.LoadGoals)
	return o.succeed(MsgGoalUpdated)
}

// SaveNames stores both display names and patches them into the settings
// store without refetching.
func (o *Orchestrator) SaveNames(ctx context.Context, user1, user2 string) Outcome {
	partial := core.Settings{
		core.KeyUser1Name: strings.TrimSpace(user1),
		core.KeyUser2Name: strings.TrimSpace(user2),
	}

	defer o.busy(view.ControlSaveNames)()
	if err := o.gw.SaveSettings(ctx, partial); err != nil {
		o.logger.ErrorContext(ctx, "Save names failed", log.FieldError, err)
		return o.fail(StatusFailed, MsgSaveFailed+Reason(err), err)
	}

	o.store.Patch(partial)
	o.page.SetNamesForm(view.BuildNamesForm(partial))
	o.page.SetUserOptions(o.store.UserOptions())
	return o.succeed(MsgNamesSaved)
}

// SavePIN stores a new access PIN. The format check is the same one login
// uses.
func (o *Orchestrator) SavePIN(ctx context.Context, pin string) Outcome {
	if err := core.ValidatePIN(pin); err != nil {
		return o.fail(StatusInvalid, MsgPINFormat, err)
	}

	defer o.busy(view.ControlSavePIN)()
	partial := core.Settings{core.KeyAccessPIN: pin}
	if err := o.gw.SaveSettings(ctx, partial); err != nil {
		o.logger.ErrorContext(ctx, "Save PIN failed", log.FieldError, err)
		return o.fail(StatusFailed, MsgSaveFailed+Reason(err), err)
	}

	o.store.Patch(partial)
	o.page.ResetForm(view.FormPIN)
	o.page.SetSecurityForm(view.BuildSecurityForm(o.store.Snapshot()))
	o.logger.InfoContext(ctx, "Access PIN updated")
	return o.succeed(MsgPINSaved)
}

// Login checks pin against freshly fetched settings. With no PIN stored
// anyone gets in. A wrong PIN clears the form without a notification.
func (o *Orchestrator) Login(ctx context.Context, pin string) Outcome {
	if err := core.ValidatePIN(pin); err != nil {
		return o.fail(StatusInvalid, MsgPINFormat, err)
	}

	defer o.busy(view.ControlLogin)()
	snap, err := o.store.Refresh(ctx)
	if err != nil {
		o.page.SetAccessGranted(false)
		return o.fail(StatusFailed, MsgLoginCheckFailed+ReasonOr(err, MsgConnectionError), err)
	}
	o.page.SetUserOptions(o.store.UserOptions())

	// Plain comparison: the PIN is stored as entered.
	if stored, ok := snap.PIN(); ok && stored != pin {
		o.page.SetAccessGranted(false)
		o.page.ResetForm(view.FormLogin)
		o.logger.WarnContext(ctx, "Login denied", log.FieldOperation, log.OpLogin)
		return Outcome{Status: StatusDenied, Err: ErrLoginDenied}
	}

	o.page.SetAccessGranted(true)
	o.logger.InfoContext(ctx, "Login granted", log.FieldOperation, log.OpLogin)
	return o.succeed("")
}

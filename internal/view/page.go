// Package view holds what the user currently sees: control and row states,
// rendered lists and pending notifications. Front ends read it; the
// services package writes it.
package view

import (
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/settings"
)

type ControlState string

const (
	Idle    ControlState = "idle"
	Loading ControlState = "loading"
)

type RowState string

const (
	RowNormal  RowState = "normal"
	RowPending RowState = "pending"
)

// Control names.
const (
	ControlAddTransaction = "add-transaction"
	ControlAddGoal        = "add-goal"
	ControlSaveNames      = "save-names"
	ControlSavePIN        = "save-pin"
	ControlLogin          = "login"
)

// UpdateGoalControl names the update button of one goal card.
func UpdateGoalControl(id core.RecordID) string { return "update-goal:" + string(id) }

// DeleteControl names the delete button of one transaction row.
func DeleteControl(id core.RecordID) string { return "delete-transaction:" + string(id) }

// Form names.
const (
	FormTransaction = "transaction"
	FormGoal        = "goal"
	FormNames       = "names"
	FormPIN         = "pin"
	FormLogin       = "login"
)

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

// maxNotifications bounds the queue; the oldest are dropped.
const maxNotifications = 50

// Page is the state of one session's screens. All methods are safe for
// concurrent use.
type Page struct {
	mu            sync.Mutex
	controls      map[string]ControlState
	rows          map[core.RecordID]RowState
	formResets    map[string]int
	notifications []Notification
	names         NamesForm
	security      SecurityForm
	userOptions   []settings.Option
	accessGranted bool

	Dashboard    *ListView[DashboardView]
	Transactions *ListView[TransactionsView]
	Goals        *ListView[GoalsView]
}

func NewPage() *Page {
	return &Page{
		controls:     map[string]ControlState{},
		rows:         map[core.RecordID]RowState{},
		formResets:   map[string]int{},
		Dashboard:    &ListView[DashboardView]{},
		Transactions: &ListView[TransactionsView]{},
		Goals:        &ListView[GoalsView]{},
	}
}

func (p *Page) SetControl(name string, s ControlState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s == Idle {
		delete(p.controls, name)
		return
	}
	p.controls[name] = s
}

// Control returns the state of name; unknown controls are idle.
func (p *Page) Control(name string) ControlState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.controls[name]; ok {
		return s
	}
	return Idle
}

// Busy lists the controls currently loading.
func (p *Page) Busy() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.controls))
	for name := range p.controls {
		out = append(out, name)
	}
	return out
}

// MarkRow sets the visual state of a transaction row.
func (p *Page) MarkRow(id core.RecordID, s RowState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s == RowNormal {
		delete(p.rows, id)
		return
	}
	p.rows[id] = s
}

func (p *Page) Row(id core.RecordID) RowState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.rows[id]; ok {
		return s
	}
	return RowNormal
}

// ResetForm records that a form was cleared.
func (p *Page) ResetForm(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.formResets[name]++
}

// FormResets counts how often a form was cleared.
func (p *Page) FormResets(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.formResets[name]
}

func (p *Page) Notify(kind NotificationKind, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, Notification{Kind: kind, Message: msg, At: time.Now()})
	if n := len(p.notifications); n > maxNotifications {
		p.notifications = append([]Notification(nil), p.notifications[n-maxNotifications:]...)
	}
}

// Notifications returns the queued notifications without removing them.
func (p *Page) Notifications() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Notification(nil), p.notifications...)
}

// DrainNotifications returns and clears the queue, as a toast area does
// once it has shown them.
func (p *Page) DrainNotifications() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.notifications
	p.notifications = nil
	return out
}

func (p *Page) SetNamesForm(f NamesForm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = f
}

func (p *Page) NamesForm() NamesForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.names
}

func (p *Page) SetSecurityForm(f SecurityForm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.security = f
}

func (p *Page) SecurityForm() SecurityForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.security
}

func (p *Page) SetUserOptions(opts []settings.Option) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userOptions = append([]settings.Option(nil), opts...)
}

func (p *Page) UserOptions() []settings.Option {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]settings.Option(nil), p.userOptions...)
}

func (p *Page) SetAccessGranted(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessGranted = ok
}

func (p *Page) AccessGranted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessGranted
}

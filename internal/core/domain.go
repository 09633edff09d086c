package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format exchanged with every backend.
const DateLayout = "2006-01-02"

const (
	RoleUser1  Role = "user1"
	RoleUser2  Role = "user2"
	RoleShared Role = "shared"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

type (
	// Role tags who a transaction belongs to. Values outside the known set
	// are carried through untouched.
	Role string

	// RecordID identifies a stored record. It is opaque: backends may hand
	// out numbers or strings and both are kept in textual form.
	RecordID string

	TxType string

	Transaction struct {
		ID          RecordID        `json:"id"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TxType          `json:"type"`
		User        Role            `json:"user"`
	}

	// NewTransaction is a transaction as submitted by the user, before the
	// backend assigns it an ID.
	NewTransaction struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TxType          `json:"type"`
		User        Role            `json:"user"`
	}

	Goal struct {
		ID      RecordID        `json:"id"`
		Name    string          `json:"name"`
		Target  decimal.Decimal `json:"target"`
		Current decimal.Decimal `json:"current"`
	}

	NewGoal struct {
		Name    string          `json:"name"`
		Target  decimal.Decimal `json:"target"`
		Current decimal.Decimal `json:"current"`
	}

	GoalUpdate struct {
		ID      RecordID        `json:"id"`
		Current decimal.Decimal `json:"current"`
	}

	// SplitInput is one raw (identifier, value) pair of the dashboard split.
	SplitInput struct {
		Name  string          `json:"name"`
		Value decimal.Decimal `json:"value"`
	}

	Dashboard struct {
		Income             decimal.Decimal `json:"income"`
		Expense            decimal.Decimal `json:"expense"`
		Balance            decimal.Decimal `json:"balance"`
		UserSplit          []SplitInput    `json:"userSplit"`
		RecentTransactions []Transaction   `json:"recentTransactions"`
	}
)

var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrLongDescription  = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrEmptyCategory    = fmt.Errorf("%w: empty category", ErrValidation)
	ErrInvalidType      = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrEmptyGoalName    = fmt.Errorf("%w: empty goal name", ErrValidation)
	ErrInvalidTarget    = fmt.Errorf("%w: invalid goal target", ErrValidation)
	ErrMissingID        = fmt.Errorf("%w: missing record id", ErrValidation)
	ErrInvalidPIN       = fmt.Errorf("%w: PIN must be exactly 4 digits", ErrValidation)
)

// Known reports whether r is one of the three roles with a defined label.
func (r Role) Known() bool {
	switch r {
	case RoleUser1, RoleUser2, RoleShared:
		return true
	}
	return false
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (id RecordID) String() string { return string(id) }

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Normalize fills defaults the backend expects and trims text fields.
func (t NewTransaction) Normalize() NewTransaction {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.Date = strings.TrimSpace(t.Date)
	if t.Date == "" {
		t.Date = Today()
	}
	if t.User == "" {
		t.User = RoleShared
	}
	return t
}

func (t NewTransaction) Validate() error {
	if t.Date != "" {
		if _, err := time.Parse(DateLayout, t.Date); err != nil {
			return ErrInvalidDate
		}
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > 200 {
		return ErrLongDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// WithID returns the stored form of t.
func (t NewTransaction) WithID(id RecordID) Transaction {
	return Transaction{
		ID:          id,
		Date:        t.Date,
		Description: t.Description,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        t.Type,
		User:        t.User,
	}
}

func (g NewGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if !g.Target.IsPositive() {
		return ErrInvalidTarget
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (g NewGoal) WithID(id RecordID) Goal {
	return Goal{ID: id, Name: strings.TrimSpace(g.Name), Target: g.Target, Current: g.Current}
}

func (u GoalUpdate) Validate() error {
	if u.ID == "" {
		return ErrMissingID
	}
	if u.Current.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePIN checks the access PIN format. Login and the security form
// both go through here.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return ErrInvalidPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// Package goals computes savings goal progress and the cards shown for
// each goal.
package goals

import (
	"errors"

	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/format"
)

// EmptyMessage is shown when there are no goals.
const EmptyMessage = "Nenhuma meta cadastrada ainda."

// ErrZeroTarget means progress is undefined.
var ErrZeroTarget = errors.New("goal target is zero")

var hundred = decimal.NewFromInt(100)

// Progress returns current/target as a whole percentage in [0, 100],
// rounding half away from zero. Saving past the target still reads 100.
func Progress(current, target decimal.Decimal) (int, error) {
	if target.IsZero() {
		return 0, ErrZeroTarget
	}
	p := current.Mul(hundred).DivRound(target, 8).Round(0)
	switch {
	case p.LessThan(decimal.Zero):
		return 0, nil
	case p.GreaterThan(hundred):
		return 100, nil
	}
	return int(p.IntPart()), nil
}

// Card is the display form of one goal.
type Card struct {
	ID           core.RecordID `json:"id"`
	Name         string        `json:"name"`
	TargetLabel  string        `json:"targetLabel"`
	CurrentLabel string        `json:"currentLabel"`
	Percent      int           `json:"percent"`
	PercentLabel string        `json:"percentLabel"`
	// Invalid marks a goal whose progress cannot be computed; it is shown
	// at 0%.
	Invalid bool `json:"invalid,omitempty"`
}

// Cards renders goals in the order given.
func Cards(goals []core.Goal) []Card {
	out := make([]Card, 0, len(goals))
	for _, g := range goals {
		p, err := Progress(g.Current, g.Target)
		out = append(out, Card{
			ID:           g.ID,
			Name:         g.Name,
			TargetLabel:  "Alvo: " + format.Currency(g.Target),
			CurrentLabel: format.Currency(g.Current),
			Percent:      p,
			PercentLabel: format.Percent(p),
			Invalid:      err != nil,
		})
	}
	return out
}

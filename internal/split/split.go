// Package split turns per-person (identifier, value) pairs into an ordered,
// coloured breakdown and the donut chart segments drawn from it.
package split

import (
	"sort"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Palette is cycled by post-sort position.
var Palette = []string{"#6246ea", "#e45858", "#2b2c34", "#ffb703", "#2cb67d"}

var hundred = decimal.NewFromInt(100)

// Entry is one line of the breakdown.
type Entry struct {
	Identifier  string
	Value       decimal.Decimal
	DisplayName string
	Color       string
	Percent     float64
}

// Breakdown is the aggregated split. When Empty is set the total is zero
// and every Percent is 0; callers render a "no data" state.
type Breakdown struct {
	Total   decimal.Decimal
	Items   []Entry
	Empty   bool
	Clamped []string // identifiers whose negative value was clamped to zero
}

func priority(id string) int {
	switch core.Role(id) {
	case core.RoleUser1:
		return 0
	case core.RoleUser2:
		return 1
	case core.RoleShared:
		return 2
	}
	return 3
}

// Aggregate orders entries user1, user2, shared, then everything else in
// input order, colours and names them, and computes each share of the
// total. Negative values count as zero.
func Aggregate(names core.NameResolver, in []core.SplitInput) Breakdown {
	sorted := make([]core.SplitInput, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priority(sorted[i].Name) < priority(sorted[j].Name)
	})

	b := Breakdown{Total: decimal.Zero, Items: make([]Entry, 0, len(sorted))}
	for i, s := range sorted {
		v := s.Value
		if v.IsNegative() {
			b.Clamped = append(b.Clamped, s.Name)
			v = decimal.Zero
		}
		b.Items = append(b.Items, Entry{
			Identifier:  s.Name,
			Value:       v,
			DisplayName: names.ResolveName(core.Role(s.Name)),
			Color:       Palette[i%len(Palette)],
		})
		b.Total = b.Total.Add(v)
	}

	if b.Total.IsZero() {
		b.Empty = true
		return b
	}
	for i := range b.Items {
		b.Items[i].Percent = b.Items[i].Value.Mul(hundred).DivRound(b.Total, 16).InexactFloat64()
	}
	return b
}

package split

import (
	"strconv"
	"strings"
)

// EmptyChartColor fills the chart when there is nothing to show.
const EmptyChartColor = "#eee"

// Segment is a [Start, End) slice of the chart in percent of the circle.
type Segment struct {
	Identifier string
	Color      string
	Start      float64
	End        float64
}

// ToSegments lays entries end to end starting at 0, keeping their order.
// Each segment starts exactly where the previous one ended.
func ToSegments(items []Entry) []Segment {
	out := make([]Segment, 0, len(items))
	cum := 0.0
	for _, it := range items {
		end := cum + it.Percent
		out = append(out, Segment{Identifier: it.Identifier, Color: it.Color, Start: cum, End: end})
		cum = end
	}
	return out
}

// ConicGradient renders segments as a CSS conic-gradient value.
func ConicGradient(segs []Segment) string {
	if len(segs) == 0 {
		return EmptyChartColor
	}
	stops := make([]string, 0, len(segs))
	for _, s := range segs {
		stops = append(stops, s.Color+" "+pct(s.Start)+" "+pct(s.End))
	}
	return "conic-gradient(" + strings.Join(stops, ", ") + ")"
}

// Chart is ConicGradient for a whole breakdown.
func Chart(b Breakdown) string {
	if b.Empty {
		return EmptyChartColor
	}
	return ConicGradient(ToSegments(b.Items))
}

func pct(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

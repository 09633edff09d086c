package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"5", "R$ 5,00"},
		{"450.5", "R$ 450,50"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-2000", "-R$ 2.000,00"},
		{"999.999", "R$ 1.000,00"},
		{"100", "R$ 100,00"},
		{"90071992547409.93", "R$ 90.071.992.547.409,93"},
		{"12345678901234567890.05", "R$ 12.345.678.901.234.567.890,05"},
		{"-123456789012345678901.99", "-R$ 123.456.789.012.345.678.901,99"},
	}
	for _, tc := range cases {
		if got := Currency(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSigned(t *testing.T) {
	if got := Signed(decimal.NewFromInt(2000), true); got != "- R$ 2.000,00" {
		t.Fatalf("unexpected expense %q", got)
	}
	if got := Signed(decimal.NewFromInt(5000), false); got != "+ R$ 5.000,00" {
		t.Fatalf("unexpected income %q", got)
	}
}

func TestDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2023-12-01", "01/12/2023"},
		{"2023-12-05T03:00:00.000Z", "05/12/2023"},
		{"2024-02-29T10:00:00-03:00", "29/02/2024"},
		{"06/12/2023", "06/12/2023"},
		{"", "-"},
		{"ontem", "ontem"},
		{"2023-13-01", "2023-13-01"},
	}
	for _, tc := range cases {
		if got := Date(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(70); got != "70%" {
		t.Fatalf("unexpected %q", got)
	}
}

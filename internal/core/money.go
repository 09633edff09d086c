// Package core provides the domain types shared by every backend and view.
//
// This file contains helpers for parsing user-typed amounts into decimals.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, the same shape the spreadsheet
	// backend reads and writes.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts a user-typed amount into a positive decimal rounded
// to cents.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted, as is
// pt-BR grouping (1.234,56). Signs are rejected: direction comes from the
// transaction type, never from the amount.
//
// Examples:
//
//	ParseAmount("12,34")    -> 12.34
//	ParseAmount("1.234,56") -> 1234.56
//	ParseAmount("12.345")   -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseNonNegativeAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseNonNegativeAmount is ParseAmount allowing zero, used for the amount
// already saved towards a goal.
func ParseNonNegativeAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = normalizeSeparators(s)
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 || s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// normalizeSeparators rewrites s so that '.' is the only decimal separator
// and grouping marks are gone.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1:
		// 1.234.567
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

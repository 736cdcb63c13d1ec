// Package core provides the ledger domain types, input normalization and the
// pure view transforms used by the chart and the ledger list.
//
// This file contains parsing of user-typed Rupiah amounts. Rupiah has no
// subunit in practice, so amounts are whole numbers.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a typed Rupiah amount to a whole number.
//
// It accepts plain digits and id-ID formatted text, optionally prefixed with
// the currency symbol. A dot groups thousands and a comma starts decimals,
// which are only accepted when they are all zero.
//
// Examples:
//
//	ParseAmount("150000")      -> 150000, nil
//	ParseAmount("150.000")     -> 150000, nil
//	ParseAmount("Rp 150.000")  -> 150000, nil
//	ParseAmount("150.000,00")  -> 150000, nil
//	ParseAmount("150.000,50")  -> 0, ErrInvalidAmount (not a whole amount)
//	ParseAmount("-5")          -> 0, ErrNegativeAmount
func ParseAmount(s string) (int64, error) {
	raw := s
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = s[2:]
	}
	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return 0, invalidAmount(raw, ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return 0, invalidAmount(raw, ErrNegativeAmount)
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ",")
	if hasFrac {
		if fracPart == "" || strings.Contains(fracPart, ",") {
			return 0, invalidAmount(raw, ErrInvalidAmount)
		}
		for _, r := range fracPart {
			if r != '0' {
				return 0, invalidAmount(raw, ErrInvalidAmount)
			}
		}
	}

	digits, ok := ungroup(intPart)
	if !ok {
		return 0, invalidAmount(raw, ErrInvalidAmount)
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, invalidAmount(raw, ErrInvalidAmount)
	}
	return v, nil
}

// ungroup strips dot thousands separators, checking that every group after
// the first has exactly three digits.
func ungroup(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	groups := strings.Split(s, ".")
	for i, g := range groups {
		if g == "" || !allDigits(g) {
			return "", false
		}
		if i == 0 && len(groups) > 1 && len(g) > 3 {
			return "", false
		}
		if i > 0 && len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func invalidAmount(raw string, err error) error {
	return &ValidationError{Field: "amount", Value: strings.TrimSpace(raw), Err: err}
}

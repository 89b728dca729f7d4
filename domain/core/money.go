package core

import (
	"strconv"
	"strings"
)

// ParsePrice converts an upstream price string into a non-negative amount.
// Commerce APIs deliver prices as decimal strings ("129.90"); anything that
// does not parse, or parses negative, degrades to 0 so a single malformed
// order can never abort an attribution run.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Tolerate currency prefixes and thousands separators ("$1,299.00").
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

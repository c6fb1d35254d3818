package utils

import (
	"strings"
)

// NormalizeSpace trims s and collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// UpperCode normalizes identifiers such as plate numbers: trimmed, single
// spaced and upper case.
func UpperCode(s string) string {
	return strings.ToUpper(NormalizeSpace(s))
}

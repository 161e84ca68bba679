package domain

import "strings"

// UnderlyingFromOptionSymbol returns the root instrument of a contract symbol:
// everything before the first space ("SPXW  250117C05000000" -> "SPXW").
// A symbol without a space is its own underlying.
func UnderlyingFromOptionSymbol(optionSymbol string) string {
	s := strings.TrimSpace(optionSymbol)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

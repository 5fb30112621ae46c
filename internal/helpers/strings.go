package helpers

import "unicode/utf8"

const ellipsis = "..."

// Truncate shortens s to at most n bytes, ending with "..." when it was cut.
// The cut never splits a multi-byte character.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= len(ellipsis) {
		return validPrefix(s, n)
	}
	return validPrefix(s, n-len(ellipsis)) + ellipsis
}

func validPrefix(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

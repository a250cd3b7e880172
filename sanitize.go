package symbaker

import (
	"strings"
)

// Sanitize maps s onto a valid symbol prefix: every byte outside
// [A-Za-z0-9_] becomes '_', an empty result becomes "_", and a leading digit
// gets a '_' in front.
func Sanitize(s string) string {
	b := strings.Builder{}
	b.Grow(len(s) + 1)
	for _, r := range s {
		if r < 0x80 && (isAlnum(byte(r)) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "_" + out
	}
	return out
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Package normalize prepares a task's URL for the redirect-history
// analyzer: invalid byte sequences are dropped (the "ignore" decode
// policy from spec.md §4.5) and the result is put into Unicode Normal
// Form C, matching Python's `to_unicode(url, 'ignore')` behavior this
// worker is ported from.
package normalize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// URL returns the NFC-normalized form of raw, with any invalid UTF-8 byte
// sequences dropped rather than rejected.
func URL(raw string) string {
	clean := raw
	if !utf8.ValidString(raw) {
		clean = dropInvalid(raw)
	}
	return norm.NFC.String(clean)
}

func dropInvalid(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

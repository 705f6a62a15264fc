// Package textnorm cleans shopper input before keyword extraction and embedding.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// knownMojibake maps CP1252 punctuation that was decoded as UTF-8 and re-encoded.
// Longer sequences come first so prefixes do not shadow them.
var knownMojibake = strings.NewReplacer(
	"â€™", "’",
	"â€˜", "‘",
	"â€œ", "“",
	"â€\u009d", "”",
	"â€“", "–",
	"â€”", "—",
	"â€¦", "…",
	"Â\u00a0", " ",
)

// Normalize returns the cleaned text, or ok=false when nothing searchable is left.
// It is idempotent: Normalize of a normalized string returns it unchanged.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	// A pass that changes s shortens it, so len(s) passes reach the fixed point.
	for i := len(s); i >= 0; i-- {
		next := pass(s)
		if next == s {
			break
		}
		s = next
	}

	if s == "" {
		return "", false
	}
	return s, true
}

func pass(s string) string {
	s = RepairMojibake(s)
	s = norm.NFC.String(s)
	s = knownMojibake.Replace(s)
	s = stripControls(s)
	return collapseSpaces(s)
}

// RepairMojibake undoes one round of UTF-8 text that was decoded as Latin-1.
// The repair is kept only if it is valid UTF-8 that still has non-ASCII runes
// and fewer of them than the input. Best effort: short strings can fool it.
func RepairMojibake(s string) string {
	before := countNonASCII(s)
	if before == 0 {
		return s
	}

	raw, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		// a rune outside Latin-1 means the text was not mis-decoded that way
		return s
	}
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, utf8.RuneError) {
		return s
	}

	after := countNonASCII(raw)
	if after == 0 || after >= before {
		return s
	}
	return raw
}

func countNonASCII(s string) int {
	n := 0
	for _, r := range s {
		if r > unicode.MaxASCII {
			n++
		}
	}
	return n
}

// stripControls replaces runs of C0 controls (and DEL) other than \n, \r, \t with one space.
func stripControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isStrippedControl(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

func isStrippedControl(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7f
}

// collapseSpaces folds whitespace runs of two or more runes into a single space and trims.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		j := i
		for j+1 < len(runes) && unicode.IsSpace(runes[j+1]) {
			j++
		}
		if j > i {
			b.WriteByte(' ')
			i = j
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

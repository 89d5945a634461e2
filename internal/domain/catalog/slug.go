package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// translitTable maps Cyrillic letters to their Latin equivalents, following the
// streamlined romanization used by the upstream providers. The table is a plain
// map so an alternative alphabet can be swapped in without touching the
// normalization pipeline.
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ж': "zh", 'з': "z", 'и': "i", 'й': "j",
	'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh",
	'щ': "sht", 'ъ': "a", 'ь': "", 'ю': "ju", 'я': "ja",
	'ы': "y", 'э': "e", 'ё': "jo",
}

// NormalizeSlug converts an arbitrary display label into a lowercase, ASCII,
// hyphen-delimited token safe for use as a path segment. Non-Latin letters are
// transliterated character by character; characters without a mapping pass
// through unchanged and are folded by the later replacement step. The function
// is pure and idempotent.
func NormalizeSlug(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))

	var sb strings.Builder
	sb.Grow(len(lower))
	for _, r := range lower {
		if mapped, ok := translitTable[r]; ok {
			sb.WriteString(mapped)
			continue
		}
		sb.WriteRune(r)
	}

	// Strip combining marks so accented Latin letters fold to their base form.
	var folded strings.Builder
	for _, r := range norm.NFD.String(sb.String()) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		folded.WriteRune(r)
	}

	// Collapse every run of characters outside [a-z0-9] into a single hyphen.
	var out []rune
	hyphen := false
	for _, r := range folded.String() {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			hyphen = false
			continue
		}
		if !hyphen && len(out) > 0 {
			out = append(out, '-')
			hyphen = true
		}
	}
	return strings.TrimRight(string(out), "-")
}

// BuildPath joins the normalized slugs of up to three hierarchy levels with "/".
// Empty parts are skipped so a two-level tuple produces a two-segment path.
func BuildPath(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if slug := NormalizeSlug(part); slug != "" {
			segments = append(segments, slug)
		}
	}
	return strings.Join(segments, "/")
}

package affair

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify converts a title into a URL-safe slug: lowercase, diacritics
// stripped, every run of non-alphanumerics collapsed into a single hyphen,
// truncated to maxLen without leaving a trailing hyphen.  An empty or
// all-punctuation title yields "affaire" so slug generation never produces an
// empty identifier.
func Slugify(title string, maxLen int) string {
	lowered := strings.ToLower(stripDiacritics(title))

	var b strings.Builder
	b.Grow(len(lowered))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range lowered {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "affaire"
	}
	if maxLen > 0 && len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	return slug
}

// SlugWithSuffix appends the collision-resolution suffix "-n" to a base slug,
// truncating the base as needed so the result still respects maxLen.
func SlugWithSuffix(base string, n, maxLen int) string {
	suffix := fmt.Sprintf("-%d", n)
	if maxLen > 0 && len(base)+len(suffix) > maxLen {
		cut := maxLen - len(suffix)
		if cut < 1 {
			cut = 1
		}
		base = strings.TrimRight(base[:cut], "-")
	}
	return base + suffix
}

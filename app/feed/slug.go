package feed

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, folds accented letters to their base form and joins
// the remaining letter and digit runs with hyphens
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return b.String()
}

// linkSlug returns the slug of the last path segment of link, without any
// file extension
func linkSlug(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return ""
	}

	base := path.Base(strings.TrimRight(u.Path, "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))

	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return Slugify(base)
}

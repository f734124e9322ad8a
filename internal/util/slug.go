// Package util provides small helpers shared across services.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches anything that is not a word character, whitespace or a hyphen.
	disallowedRe = regexp.MustCompile(`[^\w\s-]`)
	// Matches runs of hyphens and whitespace.
	separatorRe = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts a title to a URL-safe, lowercase slug.
//
//	"Pancakes"            -> "pancakes"
//	"Crème Brûlée"        -> "creme-brulee"
//	"  Mom's  Best Chili" -> "moms-best-chili"
//	"pad_thai"            -> "pad_thai"
func Slugify(s string) string {
	// Decompose accented characters and drop everything outside ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = disallowedRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = separatorRe.ReplaceAllString(s, "-")

	return strings.Trim(s, "-_")
}

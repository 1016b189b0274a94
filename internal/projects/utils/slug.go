package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	nonSlugChars  = regexp.MustCompile(`[^\w-]+`)
)

// Slugify lowercases s, turns every whitespace run into a hyphen and drops
// anything that is not a word character or hyphen. Slugify(Slugify(s)) ==
// Slugify(s).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

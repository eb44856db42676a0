package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Preferred parses an Accept-Language header and returns the best entry that
// has a resume, matching first on the full tag and then on the base language.
// It returns "" when the header is malformed or names nothing available.
func Preferred(header string, available []string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}

	for _, t := range tags {
		want := strings.ReplaceAll(t.String(), "-", "_")
		for _, a := range available {
			if strings.EqualFold(a, want) {
				return a
			}
		}
	}
	for _, t := range tags {
		base, confidence := t.Base()
		if confidence == language.No {
			continue
		}
		for _, a := range available {
			if strings.EqualFold(baseLanguage(a), base.String()) {
				return a
			}
		}
	}
	return ""
}

func baseLanguage(loc string) string {
	base, _, _ := strings.Cut(loc, "_")
	return base
}

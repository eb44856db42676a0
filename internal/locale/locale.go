// Package locale normalizes locale codes and picks the resume locale to serve
// when the requested one has no upload.
package locale

import (
	"regexp"
	"strings"

	"github.com/SRAS2024/About-Me/internal/apperror"
)

// Default is the locale tried first when the requested one is unavailable.
const Default = "en"

// Supported lists the locales offered by the admin UI.
var Supported = []string{"en", "pt_BR", "pt", "es", "fr", "de", "it", "ja", "ko", "zh"}

var pattern = regexp.MustCompile(`^[A-Za-z]{2}([_-][A-Za-z]{2,4})?$`)

// Normalize trims raw, validates it and returns it with '-' replaced by '_'.
// An empty value normalizes to Default.
func Normalize(raw string) (string, error) {
	loc := strings.TrimSpace(raw)
	if loc == "" {
		return Default, nil
	}
	if !pattern.MatchString(loc) {
		return "", apperror.Validationf(apperror.CodeInvalidLocale, "invalid locale %q", raw)
	}
	return strings.ReplaceAll(loc, "-", "_"), nil
}

// NormalizeOrDefault is Normalize for read paths: invalid input yields Default.
func NormalizeOrDefault(raw string) string {
	loc, err := Normalize(raw)
	if err != nil {
		return Default
	}
	return loc
}

// Resolve returns the locale to serve for requested given the locales that
// have a resume. The chain is: exact match, Default, the lexicographically
// smallest available locale. ok is false when nothing is available.
func Resolve(requested string, available []string) (loc string, ok bool) {
	return ResolveWithDefault(requested, Default, available)
}

// ResolveWithDefault is Resolve with a configurable default locale.
func ResolveWithDefault(requested, def string, available []string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	hasDefault := false
	smallest := available[0]
	for _, a := range available {
		if a == requested {
			return a, true
		}
		if a == def {
			hasDefault = true
		}
		if a < smallest {
			smallest = a
		}
	}
	if hasDefault {
		return def, true
	}
	return smallest, true
}

// Package i18n resolves UI strings from per-language translation
// bundles and defines the closed set of supported locales.
package i18n

import "strings"

// Locale is a supported UI language code.
type Locale string

const (
	LocaleEN Locale = "en" // English (default)
	LocaleHI Locale = "hi" // Hindi
	LocaleES Locale = "es" // Spanish
	LocaleSW Locale = "sw" // Swahili
)

// Default is the fallback locale used whenever a request carries no
// usable language.
const Default = LocaleEN

// All lists every supported locale, default first.
var All = []Locale{LocaleEN, LocaleHI, LocaleES, LocaleSW}

// Supported normalizes a raw language code and reports whether it is
// one of the supported locales. Region subtags are ignored, so
// "es-MX" maps to LocaleES.
func Supported(code string) (Locale, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	for _, l := range All {
		if string(l) == code {
			return l, true
		}
	}
	return Default, false
}

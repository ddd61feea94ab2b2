package i18n

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Bundle is one language's nested key->string mapping, decoded from
// a <lang>.json file.
type Bundle map[string]any

// Resolver maps dotted translation keys to strings with per-locale
// fallback. Lookups never fail: a missing bundle, key or segment
// yields the requested key verbatim so pages degrade to raw keys
// instead of erroring.
type Resolver struct {
	bundles map[Locale]Bundle
}

// Load reads <dir>/<code>.json for every supported locale. A missing
// or malformed file loads as an empty bundle; translations must never
// prevent startup.
func Load(dir string) *Resolver {
	r := &Resolver{bundles: make(map[Locale]Bundle, len(All))}
	for _, l := range All {
		r.bundles[l] = loadBundle(filepath.Join(dir, string(l)+".json"))
	}
	return r
}

// NewResolver builds a Resolver from in-memory bundles. Intended for
// tests and embedded defaults.
func NewResolver(bundles map[Locale]Bundle) *Resolver {
	r := &Resolver{bundles: make(map[Locale]Bundle, len(All))}
	for _, l := range All {
		if b, ok := bundles[l]; ok && b != nil {
			r.bundles[l] = b
		} else {
			r.bundles[l] = Bundle{}
		}
	}
	return r
}

func loadBundle(path string) Bundle {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}
	}
	return b
}

// Resolve walks the dotted key through the bundle for lang. An
// unsupported lang uses the default bundle; a key missing from a
// supported locale's bundle is retried against the default bundle;
// if it is absent there too the key itself is returned unchanged.
func (r *Resolver) Resolve(key, lang string) string {
	locale, _ := Supported(lang)
	if s, ok := walk(r.bundles[locale], key); ok {
		return s
	}
	if locale != Default {
		if s, ok := walk(r.bundles[Default], key); ok {
			return s
		}
	}
	return key
}

// walk follows the dotted path through nested maps and returns the
// terminal string value.
func walk(b Bundle, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	var cur any = map[string]any(b)
	for _, seg := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[seg]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

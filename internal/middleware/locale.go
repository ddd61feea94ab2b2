package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/i18n"
)

// PrefLookup fetches an account's stored language preference. It is a
// function rather than a repository type so tests can fake it without
// a database.
type PrefLookup func(ctx context.Context, userID uint64) (string, error)

// Locale returns a middleware that resolves the request language with
// the precedence: explicit ?lang= query override, then the
// authenticated account's preference, then the default. The resolved
// code is stored in the context under "lang" for handlers and the
// translation resolver. Must run after JWTAuth on protected groups;
// on public groups it simply never finds an identity.
func Locale(prefs PrefLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := i18n.Default

			if q := c.QueryParam("lang"); q != "" {
				if l, ok := i18n.Supported(q); ok {
					c.Set("lang", string(l))
					return next(c)
				}
				// Unsupported override falls through to the
				// account preference rather than erroring.
			}

			if uid, ok := CurrentUserID(c); ok && prefs != nil {
				if pref, err := prefs(c.Request().Context(), uid); err == nil {
					if l, ok := i18n.Supported(pref); ok {
						lang = l
					}
				}
			}

			c.Set("lang", string(lang))
			return next(c)
		}
	}
}

// RequestLanguage returns the language resolved by Locale, or the
// default when the middleware did not run.
func RequestLanguage(c echo.Context) string {
	if s, ok := c.Get("lang").(string); ok && s != "" {
		return s
	}
	return string(i18n.Default)
}

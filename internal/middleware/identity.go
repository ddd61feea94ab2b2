package middleware

// identity.go holds helpers for extracting the authenticated user
// from JWT claims and the Echo context. All downstream code goes
// through these instead of poking at context keys directly.

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// subjectID pulls the numeric subject out of JWT claims. JSON numbers
// decode as float64; string subjects are parsed for compatibility
// with tokens minted by other libraries.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// CurrentUserID returns the authenticated user's ID from the context,
// or false when the request is anonymous.
func CurrentUserID(c echo.Context) (uint64, bool) {
	v, ok := c.Get("user_id").(uint64)
	return v, ok && v != 0
}

// rateKeyUserID renders the identity for rate-limit keys; anonymous
// requests share the "anon" bucket component.
func rateKeyUserID(c echo.Context) string {
	if uid, ok := CurrentUserID(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}

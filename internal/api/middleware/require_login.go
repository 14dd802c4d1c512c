package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireValidated lets the request through only when the session has passed
// a password check; everyone else is sent to the login form.
func RequireValidated(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !FromContext(c).Validated {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}

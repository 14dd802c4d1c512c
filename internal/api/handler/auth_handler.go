package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/secure-blog/internal/api/middleware"
	"github.com/99minutos/secure-blog/internal/core/domain"
	"github.com/99minutos/secure-blog/internal/core/ports"
)

const msgInvalidLogin = "Invalid login"

type AuthHandler struct {
	authService ports.AuthService
	sessions    *middleware.SessionManager
	logger      zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions *middleware.SessionManager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, logger: logger}
}

// SignupForm handles GET /blog/signup.
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewSignup, signupView{})
}

// Signup handles POST /blog/signup. Any validation failure re-renders the
// form with the submitted username and email and one message per field.
func (h *AuthHandler) Signup(c echo.Context) error {
	var form signupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	sess := middleware.FromContext(c)
	sess.Validated = false

	view := signupView{Username: form.Username, Email: form.Email}

	if err := c.Validate(&form); err != nil {
		var fe FormErrors
		if !errors.As(err, &fe) {
			return err
		}
		// A well-formed username is still checked for duplicates so the
		// form reports every problem at once.
		if _, bad := fe["username"]; !bad {
			taken, err := h.authService.UsernameTaken(c.Request().Context(), form.Username)
			if err != nil {
				return err
			}
			if taken {
				fe["username"] = msgUserExists
			}
		}
		view.Errors = fe
		return h.rejectSignup(c, sess, view)
	}

	token, err := h.authService.Signup(c.Request().Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, domain.ErrUserExists):
		view.Errors = FormErrors{"username": msgUserExists}
		return h.rejectSignup(c, sess, view)
	case errors.Is(err, domain.ErrInvalidCredentials):
		view.Errors = FormErrors{"username": msgInvalidUsername}
		return h.rejectSignup(c, sess, view)
	case err != nil:
		return err
	}

	sess.Username = token
	sess.Validated = true
	if err := h.sessions.Save(c, sess); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog/welcome")
}

func (h *AuthHandler) rejectSignup(c echo.Context, sess *middleware.Session, view signupView) error {
	if err := h.sessions.Save(c, sess); err != nil {
		return err
	}
	return c.Render(http.StatusOK, viewSignup, view)
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, viewLogin, loginView{})
}

// Login handles POST /login. Unknown user and wrong password are reported
// with the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	sess := middleware.FromContext(c)
	sess.Validated = false

	token, err := h.authService.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			return err
		}
		if err := h.sessions.Save(c, sess); err != nil {
			return err
		}
		return c.Render(http.StatusOK, viewLogin, loginView{Username: form.Username, Error: msgInvalidLogin})
	}

	sess.Username = token
	sess.Validated = true
	if err := h.sessions.Save(c, sess); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog/welcome")
}

// Welcome handles GET /blog/welcome. The session username is shown once and
// then dropped; the validated flag survives so the user can still publish.
func (h *AuthHandler) Welcome(c echo.Context) error {
	sess := middleware.FromContext(c)
	if sess.Username == "" {
		return c.Redirect(http.StatusSeeOther, "/blog")
	}

	name, err := h.authService.DisplayName(sess.Username)
	sess.Username = ""
	if saveErr := h.sessions.Save(c, sess); saveErr != nil {
		return saveErr
	}
	if err != nil {
		h.logger.Warn().Err(err).Msg("welcome: undecodable session user")
		return c.Redirect(http.StatusSeeOther, "/blog")
	}
	return c.Render(http.StatusOK, viewWelcome, welcomeView{Username: name})
}

// Logout handles GET /logout. The session, and with it any draft, is discarded.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

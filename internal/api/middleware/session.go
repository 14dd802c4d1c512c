package middleware

import (
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie is the name of the cookie carrying the signed session.
	SessionCookie = "blog_session"

	sessionContextKey = "session"

	// MaxDraftBytes bounds the draft content kept in the cookie.
	MaxDraftBytes = 2048
	// MaxDraftSubjectBytes bounds the draft subject kept in the cookie.
	MaxDraftSubjectBytes = 256
	// MaxCookieValueBytes keeps the whole cookie under the 4096-byte limit
	// browsers enforce, leaving room for the name and attributes.
	MaxCookieValueBytes = 3800

	// A stored byte costs at most 8 signed bytes: a 6-byte JSON escape,
	// then base64.
	maxEncodedBytesPerByte = 8
)

// Session is the per-browser state. Username holds the obfuscated name.
type Session struct {
	Username     string
	Validated    bool
	DraftSubject string
	DraftContent string
}

type sessionClaims struct {
	Username     string `json:"usr,omitempty"`
	Validated    bool   `json:"val,omitempty"`
	DraftSubject string `json:"dsub,omitempty"`
	DraftContent string `json:"dcon,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager stores Session values in an HS256-signed cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// LoadSession decodes the session cookie into the request context. A missing,
// expired or tampered cookie yields an empty session.
func (m *SessionManager) LoadSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := &Session{}
			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				if decoded, err := m.decode(cookie.Value); err == nil {
					sess = decoded
				}
			}
			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// FromContext returns the session loaded by LoadSession, or an empty one.
func FromContext(c echo.Context) *Session {
	if sess, ok := c.Get(sessionContextKey).(*Session); ok && sess != nil {
		return sess
	}
	sess := &Session{}
	c.Set(sessionContextKey, sess)
	return sess
}

// Save signs sess and writes it to the response cookie.
func (m *SessionManager) Save(c echo.Context, sess *Session) error {
	now := m.now()
	subject := truncateUTF8(sess.DraftSubject, MaxDraftSubjectBytes)
	content := truncateUTF8(sess.DraftContent, MaxDraftBytes)

	var signed string
	for {
		var err error
		signed, err = m.sign(now, sess, subject, content)
		if err != nil {
			return err
		}
		excess := len(signed) - MaxCookieValueBytes
		if excess <= 0 || (subject == "" && content == "") {
			break
		}
		// Escapes can make the encoded draft much larger than its byte
		// length; shorten the content first, then the subject.
		cut := excess/maxEncodedBytesPerByte + 1
		if content != "" {
			content = truncateUTF8(content, len(content)-cut)
		} else {
			subject = truncateUTF8(subject, len(subject)-cut)
		}
	}

	sess.DraftSubject = subject
	sess.DraftContent = content
	c.Set(sessionContextKey, sess)
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) sign(now time.Time, sess *Session, subject, content string) (string, error) {
	claims := sessionClaims{
		Username:     sess.Username,
		Validated:    sess.Validated,
		DraftSubject: subject,
		DraftContent: content,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Clear drops the session and expires the cookie.
func (m *SessionManager) Clear(c echo.Context) {
	c.Set(sessionContextKey, &Session{})
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) decode(raw string) (*Session, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid session")
	}
	return &Session{
		Username:     claims.Username,
		Validated:    claims.Validated,
		DraftSubject: claims.DraftSubject,
		DraftContent: claims.DraftContent,
	}, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/secure-blog/internal/api/middleware"
)

// stubRenderer records the last page rendered instead of executing templates.
type stubRenderer struct {
	name string
	data any
}

func (r *stubRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data = data
	_, err := io.WriteString(w, name)
	return err
}

func newTestEcho() (*echo.Echo, *stubRenderer) {
	e := echo.New()
	r := &stubRenderer{}
	e.Validator = NewValidator()
	e.Renderer = r
	return e, r
}

func newSessions() *middleware.SessionManager {
	return middleware.NewSessionManager("test-secret", time.Hour, false)
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// withSession attaches a signed cookie for sess to req.
func withSession(t *testing.T, sm *middleware.SessionManager, req *http.Request, sess *middleware.Session) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := sm.Save(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
}

// serve runs h behind the session loader, as the router does.
func serve(t *testing.T, sm *middleware.SessionManager, c echo.Context, h echo.HandlerFunc) error {
	t.Helper()
	return sm.LoadSession()(h)(c)
}

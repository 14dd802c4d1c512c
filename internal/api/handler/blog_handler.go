package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/secure-blog/internal/api/middleware"
	"github.com/99minutos/secure-blog/internal/core/domain"
	"github.com/99minutos/secure-blog/internal/core/ports"
)

const (
	msgPostNotFound  = "That post does not exist!!"
	msgMissingFields = "Add missing subject and/or content!"
)

var permalinkPattern = regexp.MustCompile(`^(\d+)(\.json)?$`)

// BlogHandler serves the listing, permalinks and the publish form.
type BlogHandler struct {
	service  ports.BlogService
	sessions *middleware.SessionManager
	now      func() time.Time
}

func NewBlogHandler(service ports.BlogService, sessions *middleware.SessionManager) *BlogHandler {
	return &BlogHandler{service: service, sessions: sessions, now: time.Now}
}

// Listing handles GET /blog. An ?error= message is shown above the posts.
func (h *BlogHandler) Listing(c echo.Context) error {
	return h.renderListing(c, http.StatusOK, c.QueryParam("error"))
}

func (h *BlogHandler) renderListing(c echo.Context, status int, message string) error {
	top, err := h.service.TopTen(c.Request().Context(), false)
	if err != nil {
		return err
	}
	sess := middleware.FromContext(c)
	return c.Render(status, viewBlogs, blogsView{
		Posts:     top.Posts,
		Subject:   sess.DraftSubject,
		Content:   sess.DraftContent,
		Error:     message,
		AgeSecs:   ageSeconds(h.now(), top.CachedAt),
		Validated: sess.Validated,
	})
}

// ListingJSON handles GET /.json.
//
// @Summary      Most recent posts
// @Description  Returns up to ten posts, newest first, served from the read-through cache.
// @Tags         posts
// @Produce      json
// @Success      200  {array}   domain.Post
// @Failure      500  {object}  errorResponse
// @Router       /.json [get]
func (h *BlogHandler) ListingJSON(c echo.Context) error {
	top, err := h.service.TopTen(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, top.Posts)
}

// Permalink handles GET /:permalink and GET /blog/:permalink, where the
// parameter is digits optionally followed by ".json".
//
// @Summary      Get a post by permalink
// @Tags         posts
// @Produce      json
// @Param        permalink  path      string  true  "Post id followed by .json (e.g. 42.json)"
// @Success      200        {object}  domain.Post
// @Failure      404        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /{permalink} [get]
func (h *BlogHandler) Permalink(c echo.Context) error {
	m := permalinkPattern.FindStringSubmatch(c.Param("permalink"))
	if m == nil {
		return echo.ErrNotFound
	}
	asJSON := m[2] != ""

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return h.postNotFound(c, asJSON)
	}

	res, err := h.service.Permalink(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return h.postNotFound(c, asJSON)
		}
		return err
	}

	if asJSON {
		return c.JSON(http.StatusOK, res.Post)
	}
	return c.Render(http.StatusOK, viewPost, postView{
		Post:    res.Post,
		AgeSecs: ageSeconds(h.now(), res.CachedAt),
	})
}

func (h *BlogHandler) postNotFound(c echo.Context, asJSON bool) error {
	if asJSON {
		return c.JSON(http.StatusNotFound, errorResponse{Error: domain.ErrPostNotFound.Error()})
	}
	return h.renderListing(c, http.StatusNotFound, msgPostNotFound)
}

// NewPost handles POST /blog/newpost. On missing fields the input is kept as
// the session draft and the listing is shown again.
func (h *BlogHandler) NewPost(c echo.Context) error {
	var form newPostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	sess := middleware.FromContext(c)
	post, err := h.service.Publish(c.Request().Context(), ports.PublishInput{
		Subject: form.Subject,
		Content: form.Content,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidPost) {
			return err
		}
		sess.DraftSubject = form.Subject
		sess.DraftContent = form.Content
		if err := h.sessions.Save(c, sess); err != nil {
			return err
		}
		return h.renderListing(c, http.StatusOK, msgMissingFields)
	}

	sess.DraftSubject = ""
	sess.DraftContent = ""
	if err := h.sessions.Save(c, sess); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog/"+post.Permalink)
}

// Flush handles GET /blog/flush.
func (h *BlogHandler) Flush(c echo.Context) error {
	if err := h.service.Flush(c.Request().Context()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog/welcome")
}

// errorResponse is the error envelope of the JSON endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

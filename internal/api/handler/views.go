package handler

import (
	"time"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

// Template names understood by the renderer.
const (
	viewSignup  = "signup"
	viewLogin   = "login"
	viewWelcome = "welcome"
	viewBlogs   = "blogs"
	viewPost    = "post"
)

type signupForm struct {
	Username string `form:"username" validate:"username"`
	Password string `form:"password" validate:"password"`
	Verify   string `form:"verify"   validate:"eqfield=Password"`
	Email    string `form:"email"    validate:"omitempty,simpleemail"`
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type newPostForm struct {
	Subject string `form:"subject"`
	Content string `form:"content"`
}

// signupView never carries the submitted passwords back to the page.
type signupView struct {
	Username string
	Email    string
	Errors   FormErrors
}

type loginView struct {
	Username string
	Error    string
}

type welcomeView struct {
	Username string
}

type blogsView struct {
	Posts     []domain.Post
	Subject   string
	Content   string
	Error     string
	AgeSecs   int64
	Validated bool
}

type postView struct {
	Post    domain.Post
	AgeSecs int64
}

func ageSeconds(now, cachedAt time.Time) int64 {
	if cachedAt.IsZero() || now.Before(cachedAt) {
		return 0
	}
	return int64(now.Sub(cachedAt) / time.Second)
}

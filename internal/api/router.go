package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/secure-blog/docs"
	"github.com/99minutos/secure-blog/internal/api/handler"
	"github.com/99minutos/secure-blog/internal/api/middleware"
	"github.com/99minutos/secure-blog/internal/core/ports"
)

// Deps groups everything the router needs to wire the handlers.
type Deps struct {
	Blog     ports.BlogService
	Auth     ports.AuthService
	Sessions *middleware.SessionManager
	Renderer echo.Renderer
	// Checks are pinged by /health/ready, keyed by dependency name.
	Checks map[string]handler.Pinger
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Renderer = deps.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("blog_http"))
	e.Use(deps.Sessions.LoadSession())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Logger)
	blogHandler := handler.NewBlogHandler(deps.Blog, deps.Sessions)
	requireLogin := middleware.RequireValidated("/login")

	// --- Auth routes ---
	e.GET("/blog/signup", authHandler.SignupForm)
	e.POST("/blog/signup", authHandler.Signup)
	e.GET("/login", authHandler.LoginForm)
	e.POST("/login", authHandler.Login)
	e.GET("/blog/welcome", authHandler.Welcome)
	e.GET("/logout", authHandler.Logout)

	// --- Blog routes ---
	e.GET("/blog", blogHandler.Listing)
	e.GET("/.json", blogHandler.ListingJSON)
	e.POST("/blog/newpost", blogHandler.NewPost, requireLogin)
	e.GET("/blog/flush", blogHandler.Flush)
	e.GET("/blog/:permalink", blogHandler.Permalink)
	e.GET("/:permalink", blogHandler.Permalink)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// Package nouvelles is a JSON backend for sharing short science-fiction
// stories. Users register and log in with cookie sessions, publish stories
// with tags and an optional cover image, and every story gets an
// auto-generated PDF. Stories can be listed filtered by tag slugs.
package nouvelles

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// App wires together the store, asset pipeline, middleware, and routes.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Assets *Assets

	loginLimiter *LoginLimiter
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bootstrap initializes the database, asset pipeline, middleware, and
// routes without starting the listener. Start calls it; tests call it
// directly and drive the Echo instance with httptest.
func (a *App) Bootstrap() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("nouvelles: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		a.Store = store
	}
	a.Assets = NewAssets(a.Config.UploadDir)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginMaxAttempts, a.Config.LoginWindow)

	a.Echo.HideBanner = true
	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start bootstraps the application and starts the HTTP server.
func (a *App) Start() error {
	if err := a.Bootstrap(); err != nil {
		return err
	}
	defer a.Store.Close()
	return a.Echo.Start(a.Config.Addr)
}

func (a *App) setupRoutes() {
	e := a.Echo

	api := e.Group("/api")
	api.POST("/register", a.handleRegister)
	api.POST("/login", a.handleLogin)
	api.POST("/logout", a.handleLogout)
	api.POST("/stories", a.handleCreateStory)
	api.GET("/stories", a.handleListStories)
	api.GET("/tags", a.handleListTags)

	// Serve stored covers and PDFs so the returned links resolve.
	e.Static("/uploads/stories", a.Config.UploadDir)
}

// errorResponse is the JSON shape of every error surfaced to the caller.
type errorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// httpErrorHandler maps domain errors to their HTTP status and renders
// everything as structured JSON. No error here is fatal to the process;
// each is scoped to its request.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var derr *Error
	if errors.As(err, &derr) {
		status := derr.HTTPStatus()
		if status >= 500 {
			c.Logger().Errorf("internal error: %v", err)
		}
		_ = c.JSON(status, errorResponse{Message: derr.Message, Errors: derr.Fields})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)})
		return
	}

	c.Logger().Errorf("server error: %v", err)
	_ = c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
}

package nouvelles

import "time"

// Config holds all configuration for the API server.
type Config struct {
	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/nouvelles.db")
	UploadDir    string // Story upload root (default "public/uploads/stories")

	SessionSecret string // Required: session cookie encryption secret
	CookieSecure  bool   // Set true behind HTTPS

	MaxContentLen int   // Max story content length in runes (default 25000)
	MaxUploadSize int64 // Max cover image size in bytes (default 10MB)

	LoginMaxAttempts int           // Login attempts per IP per window (default 5)
	LoginWindow      time.Duration // Login rate-limit window (default 1min)
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/nouvelles.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "public/uploads/stories"
	}
	if c.MaxContentLen == 0 {
		c.MaxContentLen = 25000
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 10 << 20
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore injects an already-open store, mainly for tests.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

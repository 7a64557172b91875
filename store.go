package nouvelles

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides the user, tag, and story
// operations the API is built on. Relations are kept as plain foreign keys
// plus an explicit story_tags join table; consistency is maintained by the
// store methods, not by in-memory back-references.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, runs schema migrations, and seeds the tag catalogue.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Pragmas go in the DSN so every pooled connection gets them;
	// foreign_keys and busy_timeout are per-connection settings and a
	// one-off Exec would only configure whichever connection ran it.
	// WAL for concurrent read/write access, busy_timeout so writers wait
	// instead of failing with SQLITE_BUSY, synchronous=NORMAL is safe with
	// WAL and avoids an fsync per transaction.
	dsn := path + "?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if err := s.seedTags(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    pseudo TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    roles TEXT NOT NULL DEFAULT 'ROLE_USER',
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS stories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author_id INTEGER NOT NULL REFERENCES users(id),
    img_link TEXT,
    pdf_link TEXT,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE TABLE IF NOT EXISTS story_tags (
    story_id INTEGER NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    tag_id INTEGER NOT NULL REFERENCES tags(id),
    PRIMARY KEY (story_id, tag_id)
);
`)
	return err
}

// defaultTags is the pre-seeded catalogue; tags are read-only from the API.
var defaultTags = []Tag{
	{Title: "Space Opera", Slug: "space-opera"},
	{Title: "Anticipation", Slug: "anticipation"},
	{Title: "Dystopie", Slug: "dystopie"},
	{Title: "Cyberpunk", Slug: "cyberpunk"},
	{Title: "Hard Science", Slug: "hard-science"},
	{Title: "Post-apocalyptique", Slug: "post-apocalyptique"},
	{Title: "Voyage temporel", Slug: "voyage-temporel"},
	{Title: "Premier contact", Slug: "premier-contact"},
	{Title: "Intelligence artificielle", Slug: "intelligence-artificielle"},
	{Title: "Utopie", Slug: "utopie"},
	{Title: "Science-fiction militaire", Slug: "science-fiction-militaire"},
	{Title: "Biopunk", Slug: "biopunk"},
	{Title: "Transhumanisme", Slug: "transhumanisme"},
	{Title: "Réalité virtuelle", Slug: "realite-virtuelle"},
	{Title: "Univers parallèles", Slug: "univers-paralleles"},
}

func (s *Store) seedTags() error {
	for _, t := range defaultTags {
		if _, err := s.db.Exec(
			`INSERT INTO tags (title, slug) VALUES (?, ?) ON CONFLICT(slug) DO NOTHING`,
			t.Title, t.Slug,
		); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure on the given column (e.g. "users.email"). The constraint is the
// final authority on uniqueness; pre-checks only improve error messages.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

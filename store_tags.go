package nouvelles

import (
	"database/sql"
	"errors"
	"strings"
)

// NormalizeSlugs trims, drops empty strings, and deduplicates while
// preserving the caller's relative order.
func NormalizeSlugs(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	var out []string
	for _, raw := range slugs {
		slug := strings.TrimSpace(raw)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// ResolveTags maps submitted slugs to tag records, in submission order.
// The policy is strict: the first slug with no matching tag rejects the
// whole operation rather than being silently skipped.
func (s *Store) ResolveTags(slugs []string) ([]Tag, error) {
	slugs = NormalizeSlugs(slugs)
	tags := make([]Tag, 0, len(slugs))
	for _, slug := range slugs {
		var t Tag
		err := s.db.QueryRow(`SELECT id, title, slug FROM tags WHERE slug = ?`, slug).
			Scan(&t.ID, &t.Title, &t.Slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, UnknownTag(slug)
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// ListTags returns the full tag catalogue ordered by title.
func (s *Store) ListTags() ([]Tag, error) {
	rows, err := s.db.Query(`SELECT id, title, slug FROM tags ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

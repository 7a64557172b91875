package nouvelles

import (
	"database/sql"
	"errors"
	"strings"
)

// CreateDraft inserts a story with title, content, and author only, and
// returns it with its assigned id. Tags and derived links are attached in a
// second phase once the id-dependent side effects have run.
func (s *Store) CreateDraft(title, content string, authorID int64) (*Story, error) {
	res, err := s.db.Exec(
		`INSERT INTO stories (title, content, author_id) VALUES (?, ?, ?)`,
		title, content, authorID,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Story{ID: id, Title: title, Content: content, AuthorID: authorID}, nil
}

// AttachTags associates each tag with the story. Idempotent per tag: a
// duplicate attach is a no-op thanks to the join table's primary key.
func (s *Store) AttachTags(storyID int64, tags []Tag) error {
	for _, t := range tags {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO story_tags (story_id, tag_id) VALUES (?, ?)`,
			storyID, t.ID,
		); err != nil {
			return err
		}
	}
	return nil
}

// SetImageLink records the public image path on the story row.
func (s *Store) SetImageLink(storyID int64, link string) error {
	_, err := s.db.Exec(`UPDATE stories SET img_link = ? WHERE id = ?`, link, storyID)
	return err
}

// SetPdfLink records the public PDF path on the story row.
func (s *Store) SetPdfLink(storyID int64, link string) error {
	_, err := s.db.Exec(`UPDATE stories SET pdf_link = ? WHERE id = ?`, link, storyID)
	return err
}

// DeleteStory removes a story; join rows go with it via ON DELETE CASCADE.
// Used as compensation when a downstream step fails after the draft insert.
func (s *Store) DeleteStory(storyID int64) error {
	_, err := s.db.Exec(`DELETE FROM stories WHERE id = ?`, storyID)
	return err
}

// GetStory returns a single story with its tags, or nil if none.
func (s *Store) GetStory(id int64) (*Story, error) {
	var st Story
	err := s.db.QueryRow(
		`SELECT id, title, content, author_id, img_link, pdf_link, created_at FROM stories WHERE id = ?`, id,
	).Scan(&st.ID, &st.Title, &st.Content, &st.AuthorID, &st.ImgLink, &st.PdfLink, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tagsByStory, err := s.tagsForStories([]int64{st.ID})
	if err != nil {
		return nil, err
	}
	st.Tags = tagsByStory[st.ID]
	if st.Tags == nil {
		st.Tags = []Tag{}
	}
	return &st, nil
}

// ListStories returns story summaries ordered by id descending (most
// recent first), each including author and tags. A non-empty slug set
// restricts results to stories carrying at least one of those tags
// (inclusive-OR); DISTINCT keeps the many-to-many join from producing
// duplicate rows.
func (s *Store) ListStories(tagSlugs []string) ([]StorySummary, error) {
	tagSlugs = NormalizeSlugs(tagSlugs)

	query := `SELECT DISTINCT s.id, s.title, s.img_link, s.pdf_link, u.id, u.pseudo
		FROM stories s
		JOIN users u ON u.id = s.author_id`
	var args []any
	if len(tagSlugs) > 0 {
		query += `
		JOIN story_tags st ON st.story_id = s.id
		JOIN tags t ON t.id = st.tag_id
		WHERE t.slug IN (` + placeholders(len(tagSlugs)) + `)`
		for _, slug := range tagSlugs {
			args = append(args, slug)
		}
	}
	query += ` ORDER BY s.id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []StorySummary{}
	var ids []int64
	for rows.Next() {
		var sum StorySummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.ImgLink, &sum.PdfLink, &sum.Author.ID, &sum.Author.Pseudo); err != nil {
			return nil, err
		}
		sum.Tags = []Tag{}
		summaries = append(summaries, sum)
		ids = append(ids, sum.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return summaries, nil
	}

	tagsByStory, err := s.tagsForStories(ids)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if tags, ok := tagsByStory[summaries[i].ID]; ok {
			summaries[i].Tags = tags
		}
	}
	return summaries, nil
}

// tagsForStories loads all tags for the given story ids in one query.
func (s *Store) tagsForStories(ids []int64) (map[int64][]Tag, error) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.Query(
		`SELECT st.story_id, t.id, t.title, t.slug
		FROM story_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.story_id IN (`+placeholders(len(ids))+`)
		ORDER BY t.title`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Tag)
	for rows.Next() {
		var storyID int64
		var t Tag
		if err := rows.Scan(&storyID, &t.ID, &t.Title, &t.Slug); err != nil {
			return nil, err
		}
		out[storyID] = append(out[storyID], t)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

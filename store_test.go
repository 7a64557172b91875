package nouvelles

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Store, email, pseudo string) *User {
	t.Helper()
	u, err := s.CreateUser(email, pseudo, "$argon2id$fake", []string{"ROLE_USER"})
	require.NoError(t, err)
	return u
}

func TestSeededTags(t *testing.T) {
	s := setupTestStore(t)

	tags, err := s.ListTags()
	require.NoError(t, err)
	assert.Len(t, tags, 15)

	bySlug := make(map[string]Tag)
	for _, tag := range tags {
		bySlug[tag.Slug] = tag
	}
	assert.Equal(t, "Cyberpunk", bySlug["cyberpunk"].Title)
	assert.Equal(t, "Réalité virtuelle", bySlug["realite-virtuelle"].Title)
}

func TestSeedTagsIdempotent(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.seedTags())

	tags, err := s.ListTags()
	require.NoError(t, err)
	assert.Len(t, tags, 15, "re-seeding must not duplicate tags")
}

func TestCreateUser(t *testing.T) {
	s := setupTestStore(t)

	u := mustCreateUser(t, s, "ada@example.com", "ada")
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "ada", u.Pseudo)
	assert.Equal(t, []string{"ROLE_USER"}, u.RoleList())

	found, err := s.FindUserByEmail("ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	found, err = s.FindUserByPseudo("ada")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	missing, err := s.FindUserByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserConflicts(t *testing.T) {
	s := setupTestStore(t)
	mustCreateUser(t, s, "ada@example.com", "ada")

	// Same email and same pseudo: the email check runs first.
	_, err := s.CreateUser("ada@example.com", "ada", "h", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Email already in use.")

	// Same pseudo, different email.
	_, err = s.CreateUser("grace@example.com", "ada", "h", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Pseudo already in use.")
}

func TestResolveTags(t *testing.T) {
	s := setupTestStore(t)

	tags, err := s.ResolveTags([]string{"cyberpunk", "", "dystopie", "cyberpunk"})
	require.NoError(t, err)
	require.Len(t, tags, 2, "empties dropped, duplicates removed")
	assert.Equal(t, "cyberpunk", tags[0].Slug, "submission order preserved")
	assert.Equal(t, "dystopie", tags[1].Slug)
}

func TestResolveTagsUnknownSlug(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.ResolveTags([]string{"cyberpunk", "not-a-real-slug"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.EqualError(t, err, "Unknown tag: not-a-real-slug")
}

func TestStoryLifecycle(t *testing.T) {
	s := setupTestStore(t)
	author := mustCreateUser(t, s, "ada@example.com", "ada")

	draft, err := s.CreateDraft("La dérive", "Il était une fois.", author.ID)
	require.NoError(t, err)
	require.NotZero(t, draft.ID)

	tags, err := s.ResolveTags([]string{"space-opera", "cyberpunk"})
	require.NoError(t, err)
	require.NoError(t, s.AttachTags(draft.ID, tags))
	// Attaching again is a no-op.
	require.NoError(t, s.AttachTags(draft.ID, tags))

	require.NoError(t, s.SetImageLink(draft.ID, "/uploads/stories/1/1.png"))
	require.NoError(t, s.SetPdfLink(draft.ID, "/uploads/stories/1/1.pdf"))

	got, err := s.GetStory(draft.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "La dérive", got.Title)
	assert.Equal(t, author.ID, got.AuthorID)
	require.NotNil(t, got.ImgLink)
	assert.Equal(t, "/uploads/stories/1/1.png", *got.ImgLink)
	require.NotNil(t, got.PdfLink)
	assert.Equal(t, "/uploads/stories/1/1.pdf", *got.PdfLink)
	assert.Len(t, got.Tags, 2, "duplicate attach must not duplicate tags")
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	s := setupTestStore(t)

	// Pin as many connections as the pool allows and check the pragma on
	// each one; a setting applied to a single connection would leave the
	// others with foreign keys off and break ON DELETE CASCADE.
	ctx := context.Background()
	var conns []*sql.Conn
	for i := 0; i < 4; i++ {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	for i, conn := range conns {
		var fk int
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, 1, fk, "connection %d", i)
	}
	for _, conn := range conns {
		require.NoError(t, conn.Close())
	}
}

func TestDeleteStoryCascadesJoinRows(t *testing.T) {
	s := setupTestStore(t)
	author := mustCreateUser(t, s, "ada@example.com", "ada")

	draft, err := s.CreateDraft("Brouillon", "…", author.ID)
	require.NoError(t, err)
	tags, err := s.ResolveTags([]string{"utopie"})
	require.NoError(t, err)
	require.NoError(t, s.AttachTags(draft.ID, tags))

	require.NoError(t, s.DeleteStory(draft.ID))

	got, err := s.GetStory(draft.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var joinRows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM story_tags WHERE story_id = ?`, draft.ID).Scan(&joinRows))
	assert.Zero(t, joinRows)
}

func TestListStories(t *testing.T) {
	s := setupTestStore(t)
	ada := mustCreateUser(t, s, "ada@example.com", "ada")
	grace := mustCreateUser(t, s, "grace@example.com", "grace")

	first, err := s.CreateDraft("Première", "a", ada.ID)
	require.NoError(t, err)
	second, err := s.CreateDraft("Deuxième", "b", grace.ID)
	require.NoError(t, err)
	third, err := s.CreateDraft("Troisième", "c", ada.ID)
	require.NoError(t, err)

	attach := func(storyID int64, slugs ...string) {
		tags, err := s.ResolveTags(slugs)
		require.NoError(t, err)
		require.NoError(t, s.AttachTags(storyID, tags))
	}
	attach(first.ID, "cyberpunk", "dystopie")
	attach(second.ID, "dystopie")
	// third has no tags

	all, err := s.ListStories(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "ordered by id descending")
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)
	assert.Equal(t, "ada", all[0].Author.Pseudo)
	assert.Empty(t, all[0].Tags)
	assert.Len(t, all[2].Tags, 2)

	// Inclusive-OR filter: a story tagged {cyberpunk, dystopie} matches a
	// filter naming only one of them plus an unrelated slug.
	filtered, err := s.ListStories([]string{"cyberpunk", "utopie"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)

	// A story matching on two of the filtered tags must appear once.
	filtered, err = s.ListStories([]string{"cyberpunk", "dystopie"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, second.ID, filtered[0].ID)
	assert.Equal(t, first.ID, filtered[1].ID)

	// Listing twice with no writes in between is identical.
	again, err := s.ListStories(nil)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestNormalizeSlugs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"drops empties", []string{"", "  ", "a"}, []string{"a"}},
		{"dedupes keeping order", []string{"b", "a", "b", "a"}, []string{"b", "a"}},
		{"trims", []string{" cyberpunk "}, []string{"cyberpunk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlugs(tt.in))
		})
	}
}

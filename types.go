package nouvelles

import "strings"

// User is an account able to log in and publish stories.
// PasswordHash holds the encoded argon2id hash, never the plain password.
type User struct {
	ID           int64
	Email        string
	Pseudo       string
	PasswordHash string
	Roles        string // comma-joined, e.g. "ROLE_USER,ROLE_ADMIN"
	CreatedAt    string
}

// RoleList returns the user's roles, always including ROLE_USER.
func (u User) RoleList() []string {
	roles := []string{"ROLE_USER"}
	for _, r := range strings.Split(u.Roles, ",") {
		r = strings.TrimSpace(r)
		if r != "" && r != "ROLE_USER" {
			roles = append(roles, r)
		}
	}
	return roles
}

// Tag is a pre-seeded story category, addressed by its URL-safe slug.
type Tag struct {
	ID    int64  `json:"-"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Story is the core content object: a text body with tags, an optional
// cover image, and a generated PDF. ImgLink and PdfLink are public paths
// filled in only after the corresponding file write succeeds.
type Story struct {
	ID        int64
	Title     string
	Content   string
	AuthorID  int64
	Tags      []Tag
	ImgLink   *string
	PdfLink   *string
	CreatedAt string
}

// StorySummary is the listing payload for GET /api/stories.
type StorySummary struct {
	ID      int64         `json:"id"`
	Title   string        `json:"title"`
	ImgLink *string       `json:"imgLink"`
	PdfLink *string       `json:"pdfLink"`
	Author  AuthorSummary `json:"author"`
	Tags    []Tag         `json:"tags"`
}

// AuthorSummary is the public view of a story's author.
type AuthorSummary struct {
	ID     int64  `json:"id"`
	Pseudo string `json:"pseudo"`
}

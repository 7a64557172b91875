package nouvelles

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// storyCreatedResponse is the 201 payload of POST /api/stories.
type storyCreatedResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	ContentLength int     `json:"contentLength"`
	Tags          []Tag   `json:"tags"`
	ImgLink       *string `json:"imgLink"`
	PdfLink       *string `json:"pdfLink"`
}

// handleCreateStory runs the creation sequence: authenticate, validate,
// insert the draft to mint the id, resolve and attach tags, store the
// optional cover image, render the PDF, then record the derived links.
// Any failure after the draft insert deletes the story row and its upload
// directory so no orphaned draft survives.
func (a *App) handleCreateStory(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return Unauthorized("Not authenticated")
	}
	user, err := a.Store.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return Unauthorized("Not authenticated")
	}

	input := storyInput{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Content: c.FormValue("content"),
	}
	if err := checkStruct(input); err != nil {
		return err
	}
	if utf8.RuneCountInString(input.Content) > a.Config.MaxContentLen {
		return Validation("Validation failed", []FieldError{
			{Field: "content", Message: fmt.Sprintf("must not exceed %d characters", a.Config.MaxContentLen)},
		})
	}

	story, err := a.Store.CreateDraft(input.Title, input.Content, userID)
	if err != nil {
		return err
	}

	tags, imgLink, pdfLink, err := a.finishStory(c, story, user)
	if err != nil {
		// Compensation: drop the partial story and any files written for
		// it. Best effort; the request error is what the caller sees.
		if derr := a.Store.DeleteStory(story.ID); derr != nil {
			c.Logger().Errorf("rollback story %d: %v", story.ID, derr)
		}
		if derr := a.Assets.RemoveStoryDir(story.ID); derr != nil {
			c.Logger().Errorf("rollback story %d files: %v", story.ID, derr)
		}
		return err
	}

	return c.JSON(http.StatusCreated, storyCreatedResponse{
		ID:            story.ID,
		Title:         story.Title,
		ContentLength: utf8.RuneCountInString(story.Content),
		Tags:          tags,
		ImgLink:       imgLink,
		PdfLink:       pdfLink,
	})
}

// finishStory performs the post-insert phase: tags, image, PDF, links.
func (a *App) finishStory(c echo.Context, story *Story, author *User) (tags []Tag, imgLink, pdfLink *string, err error) {
	tags, err = a.Store.ResolveTags(formValues(c, "tags"))
	if err != nil {
		return nil, nil, nil, err
	}
	if err = a.Store.AttachTags(story.ID, tags); err != nil {
		return nil, nil, nil, err
	}

	if fh, ferr := c.FormFile("image"); ferr == nil && fh != nil {
		if fh.Size > a.Config.MaxUploadSize {
			return nil, nil, nil, Validation("Validation failed", []FieldError{
				{Field: "image", Message: "file too large"},
			})
		}
		link, serr := a.Assets.StoreImage(story.ID, fh)
		if serr != nil {
			return nil, nil, nil, serr
		}
		if serr := a.Store.SetImageLink(story.ID, link); serr != nil {
			return nil, nil, nil, serr
		}
		imgLink = &link
	}

	link, err := a.Assets.RenderPDF(story.ID, story.Title, story.Content, author.Pseudo)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = a.Store.SetPdfLink(story.ID, link); err != nil {
		return nil, nil, nil, err
	}
	pdfLink = &link

	return tags, imgLink, pdfLink, nil
}

func (a *App) handleListStories(c echo.Context) error {
	stories, err := a.Store.ListStories(queryValues(c, "tags"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stories)
}

func (a *App) handleListTags(c echo.Context) error {
	tags, err := a.Store.ListTags()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// formValues collects repeatable form fields sent as either "name[]" or
// "name".
func formValues(c echo.Context, name string) []string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	return append(params[name+"[]"], params[name]...)
}

// queryValues collects repeatable query params sent as "name[]" or "name".
func queryValues(c echo.Context, name string) []string {
	params := c.QueryParams()
	return append(params[name+"[]"], params[name]...)
}

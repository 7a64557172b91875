package nouvelles

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	// webp covers decode with image.DecodeConfig like jpeg/png.
	_ "golang.org/x/image/webp"
)

// publicPrefix is the URL prefix under which stored files are served.
const publicPrefix = "/uploads/stories"

// allowedImageExts maps accepted sniffed media types to file extensions.
var allowedImageExts = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Assets stores story files on disk under a per-story directory keyed by
// the store-minted id, so concurrent requests never touch the same path.
type Assets struct {
	dir string // upload root, e.g. "public/uploads/stories"
}

// NewAssets creates an asset pipeline rooted at dir.
func NewAssets(dir string) *Assets {
	return &Assets{dir: dir}
}

// StoryDir returns the storage directory for a story.
func (a *Assets) StoryDir(storyID int64) string {
	return filepath.Join(a.dir, strconv.FormatInt(storyID, 10))
}

func (a *Assets) ensureStoryDir(storyID int64) (string, error) {
	dir := a.StoryDir(storyID)
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return "", fmt.Errorf("create story dir: %w", err)
	}
	return dir, nil
}

// RemoveStoryDir deletes a story's directory and everything in it. Used as
// compensation when story creation fails partway.
func (a *Assets) RemoveStoryDir(storyID int64) error {
	return os.RemoveAll(a.StoryDir(storyID))
}

// StoreImage validates and stores an uploaded cover image as
// {storyID}.{ext} in the story's directory and returns the public link.
// The media type is sniffed from the file contents; only jpeg, png, and
// webp are accepted, and the image must actually decode.
func (a *Assets) StoreImage(storyID int64, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	mediaType := http.DetectContentType(head[:n])

	if _, ok := allowedImageExts[mediaType]; !ok {
		return "", UnsupportedMedia("Invalid image type (jpeg/png/webp only)")
	}
	ext := imageExt(mediaType, fh.Filename)

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	if _, _, err := image.DecodeConfig(src); err != nil {
		return "", UnsupportedMedia("Invalid image: " + err.Error())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	dir, err := a.ensureStoryDir(storyID)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%d.%s", storyID, ext)
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return publicLink(storyID, filename), nil
}

func publicLink(storyID int64, filename string) string {
	return fmt.Sprintf("%s/%d/%s", publicPrefix, storyID, filename)
}

// imageExt picks the stored file's extension: the canonical extension of
// the sniffed media type, else the client-supplied one, else "bin".
func imageExt(mediaType, filename string) string {
	if ext := allowedImageExts[mediaType]; ext != "" {
		return ext
	}
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return ext
	}
	return "bin"
}

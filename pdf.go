package nouvelles

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// RenderPDF renders the story to {storyID}.pdf in the story's directory and
// returns the public link. Every successfully created story gets a PDF, so
// this step is unconditional in the creation flow.
func (a *Assets) RenderPDF(storyID int64, title, content, author string) (string, error) {
	dir, err := a.ensureStoryDir(storyID)
	if err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(sanitizeText(title), true)
	pdf.SetAuthor(sanitizeText(author), true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Core fonts cover Latin-1, so accented text goes through the cp1252
	// translator instead of being written raw.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(sanitizeText(title)), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 11)
	pdf.MultiCell(0, 6, tr("par "+sanitizeText(author)), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, tr(sanitizeText(content)), "", "L", false)

	filename := fmt.Sprintf("%d.pdf", storyID)
	if err := pdf.OutputFileAndClose(filepath.Join(dir, filename)); err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}
	return publicLink(storyID, filename), nil
}

// sanitizeText drops invalid UTF-8 sequences so a corrupt multi-byte input
// cannot break the rendered document.
func sanitizeText(s string) string {
	return strings.ToValidUTF8(s, "")
}

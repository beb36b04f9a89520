package documents

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

const maxTextFileSize = 10 * 1024 * 1024 // 10MB

// extractPDFPages returns one Page per PDF page. Pages whose text cannot be
// extracted come back empty; only failure to open the file is an error.
func (s *Service) extractPDFPages(path string) (pages []Page, err error) {
	// The parser panics on some malformed inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	numPages := reader.NumPage()
	pages = make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, Page{Number: i, Text: s.extractPageText(reader, path, i)})
	}

	return pages, nil
}

func (s *Service) extractPageText(reader *pdf.Reader, path string, pageNum int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("page text extraction panicked", "path", path, "page", pageNum, "err", fmt.Sprint(r))
			text = ""
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		s.logger.Debug("could not extract page text", "path", path, "page", pageNum, "err", err.Error())
		return ""
	}

	return text
}

// readTextFile reads up to maxTextFileSize bytes, dropping invalid UTF-8
// sequences. truncated reports whether the file had more content.
func readTextFile(path string) (text string, truncated bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxTextFileSize+1))
	if err != nil {
		return "", false, err
	}
	if len(content) > maxTextFileSize {
		content = content[:maxTextFileSize]
		truncated = true
	}

	return strings.ToValidUTF8(string(content), ""), truncated, nil
}

package search

import (
	"strings"

	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/metrics"
	"github.com/meghashyamc/supportdesk/services/documents"
)

const DefaultMaxHits = 4

// Hit points at the first matching page of a PDF, or at a whole text document (Page is nil).
type Hit struct {
	Source  string `json:"source"`
	Page    *int   `json:"page,omitempty"`
	Excerpt string `json:"excerpt"`
}

type Service struct {
	logger        logger.Logger
	maxHits       int
	excerptWindow int
}

func New(logger logger.Logger, maxHits int, excerptWindow int) *Service {
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	if excerptWindow <= 0 {
		excerptWindow = DefaultExcerptWindow
	}

	return &Service{
		logger:        logger,
		maxHits:       maxHits,
		excerptWindow: excerptWindow,
	}
}

// Search scans PDFs and then text documents for a case-insensitive substring
// match. Each document contributes at most one hit and the scan stops once
// maxHits is reached. A blank query matches nothing.
func (s *Service) Search(query string, library *documents.Library) []Hit {
	query = strings.TrimSpace(query)
	if query == "" || library == nil {
		return []Hit{}
	}

	hits := make([]Hit, 0, s.maxHits)

	for _, doc := range library.PDFs() {
		if len(hits) >= s.maxHits {
			break
		}
		for _, page := range doc.Pages {
			if containsFold(page.Text, query) {
				pageNum := page.Number
				hits = append(hits, Hit{
					Source:  doc.Name,
					Page:    &pageNum,
					Excerpt: Excerpt(page.Text, query, s.excerptWindow),
				})
				break
			}
		}
	}

	for _, doc := range library.Texts() {
		if len(hits) >= s.maxHits {
			break
		}
		if containsFold(doc.Text, query) {
			hits = append(hits, Hit{
				Source:  doc.Name,
				Excerpt: Excerpt(doc.Text, query, s.excerptWindow),
			})
		}
	}

	metrics.ObserveSearch(len(hits))
	s.logger.Debug("searched documents", "query", query, "hits", len(hits))

	return hits
}

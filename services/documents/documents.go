package documents

import (
	"fmt"
	"sync"
	"time"

	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/metrics"
)

// Service loads the data directory once and serves the cached Library afterwards.
type Service struct {
	logger  logger.Logger
	dataDir string

	mu      sync.RWMutex
	library *Library
}

func New(logger logger.Logger, dataDir string) *Service {
	return &Service{
		logger:  logger,
		dataDir: dataDir,
	}
}

func (s *Service) DataDir() string {
	return s.dataDir
}

// Library returns the cached documents, loading them on first use.
// A failed load is not cached, so a later call retries once the directory exists.
func (s *Service) Library() (*Library, error) {
	s.mu.RLock()
	library := s.library
	s.mu.RUnlock()
	if library != nil {
		return library, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.library != nil {
		return s.library, nil
	}

	return s.loadLocked()
}

// Reload discards the cache and re-scans the data directory.
func (s *Service) Reload() (*Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

// Files lists every entry of the data directory, supported or not.
func (s *Service) Files() ([]string, error) {
	return listDir(s.dataDir)
}

func (s *Service) loadLocked() (*Library, error) {
	library, err := s.Load(s.dataDir)
	if err != nil {
		return nil, err
	}
	s.library = library

	return library, nil
}

// Load reads every supported file in dir. Unreadable files are skipped and
// reported in Library.Warnings.
func (s *Service) Load(dir string) (*Library, error) {
	files, err := discoverFiles(dir)
	if err != nil {
		s.logger.Error("could not list data directory", "dir", dir, "err", err.Error())
		return nil, err
	}

	library := &Library{LoadedAt: time.Now().UTC()}
	var pdfDocs, textDocs []Document

	for _, file := range files {
		switch file.Kind {
		case KindPDF:
			pages, err := s.extractPDFPages(file.Path)
			if err != nil {
				library.Warnings = append(library.Warnings, s.warn(file, fmt.Sprintf("could not open %s: %s", file.Name, err)))
				continue
			}
			pdfDocs = append(pdfDocs, Document{Name: file.Name, Kind: KindPDF, Pages: pages})
		case KindText:
			text, truncated, err := readTextFile(file.Path)
			if err != nil {
				library.Warnings = append(library.Warnings, s.warn(file, fmt.Sprintf("could not read %s: %s", file.Name, err)))
				continue
			}
			if truncated {
				library.Warnings = append(library.Warnings, s.warn(file, fmt.Sprintf("%s is larger than %d bytes, only the start is searchable", file.Name, maxTextFileSize)))
			}
			textDocs = append(textDocs, Document{Name: file.Name, Kind: KindText, Text: text})
		}
	}

	library.Documents = append(pdfDocs, textDocs...)

	metrics.DocumentsLoaded.WithLabelValues(string(KindPDF)).Set(float64(len(pdfDocs)))
	metrics.DocumentsLoaded.WithLabelValues(string(KindText)).Set(float64(len(textDocs)))
	s.logger.Info("loaded documents", "dir", dir, "pdfs", len(pdfDocs), "texts", len(textDocs), "warnings", len(library.Warnings))

	return library, nil
}

func (s *Service) warn(file FileInfo, reason string) LoadWarning {
	s.logger.Warn("document load warning", "file", file.Name, "reason", reason)
	metrics.DocumentLoadWarningsTotal.Inc()

	return LoadWarning{
		File:   file.Name,
		Reason: reason,
	}
}

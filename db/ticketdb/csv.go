package ticketdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/meghashyamc/supportdesk/logger"
)

// CSVStore keeps tickets in a single CSV file. Every append reads the whole
// file, adds the row in memory and rewrites the file. Appends within one
// process are serialized; separate processes sharing the file can still
// lose rows.
type CSVStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

func New(logger logger.Logger, path string) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("ticket file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("failed to create ticket file directory", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to create ticket file directory: %w", err)
	}

	return &CSVStore{path: path, logger: logger}, nil
}

func (s *CSVStore) Path() string {
	return s.path
}

func (s *CSVStore) Append(ticket Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.readAll()
	if err != nil {
		return err
	}
	tickets = append(tickets, ticket.Trimmed())

	if err := s.writeAll(tickets); err != nil {
		return err
	}
	s.logger.Info("saved ticket", "path", s.path, "total", len(tickets))

	return nil
}

func (s *CSVStore) List() ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAll()
}

func (s *CSVStore) readAll() ([]Ticket, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Ticket{}, nil
		}
		s.logger.Error("failed to open ticket file", "path", s.path, "err", err.Error())
		return nil, fmt.Errorf("failed to open ticket file: %w", err)
	}
	defer file.Close()

	tickets := []Ticket{}
	if err := gocsv.UnmarshalFile(file, &tickets); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []Ticket{}, nil
		}
		s.logger.Error("failed to parse ticket file", "path", s.path, "err", err.Error())
		return nil, fmt.Errorf("failed to parse ticket file %s: %w", s.path, err)
	}

	return tickets, nil
}

// writeAll replaces the ticket file through a temp file in the same directory
// so readers never observe a half-written file.
func (s *CSVStore) writeAll(tickets []Ticket) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tickets-*.csv")
	if err != nil {
		s.logger.Error("failed to create temporary ticket file", "path", s.path, "err", err.Error())
		return fmt.Errorf("failed to create temporary ticket file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set ticket file permissions: %w", err)
	}

	if err := gocsv.MarshalFile(&tickets, tmp); err != nil {
		tmp.Close()
		s.logger.Error("failed to write tickets", "path", tmpPath, "err", err.Error())
		return fmt.Errorf("failed to write tickets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary ticket file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		s.logger.Error("failed to replace ticket file", "path", s.path, "err", err.Error())
		return fmt.Errorf("failed to replace ticket file: %w", err)
	}

	return nil
}

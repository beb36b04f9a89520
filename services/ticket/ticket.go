package ticket

import (
	"fmt"

	"github.com/meghashyamc/supportdesk/db/ticketdb"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/metrics"
)

const maxSummaryLength = 80

// Draft holds the prefilled ticket form for an unanswered question.
type Draft struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

type Service struct {
	logger logger.Logger
	store  ticketdb.DB
}

func New(logger logger.Logger, store ticketdb.DB) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// Create appends the ticket and returns the confirmation shown to the user.
// Field contents are not validated, only trimmed.
func (s *Service) Create(t ticketdb.Ticket) (string, error) {
	if err := s.store.Append(t); err != nil {
		s.logger.Error("could not save ticket", "err", err.Error())
		return "", fmt.Errorf("could not save ticket: %w", err)
	}
	metrics.TicketsCreatedTotal.Inc()

	return fmt.Sprintf("Ticket saved to %s", s.store.Path()), nil
}

func (s *Service) List() ([]ticketdb.Ticket, error) {
	return s.store.List()
}

func NewDraft(question string) Draft {
	summary := []rune(question)
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}

	return Draft{
		Summary:     string(summary),
		Description: fmt.Sprintf("User question:\n%s\n\nAdditional details:", question),
	}
}

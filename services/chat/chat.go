package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/meghashyamc/supportdesk/db/kvdb"
	"github.com/meghashyamc/supportdesk/db/ticketdb"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/documents"
	"github.com/meghashyamc/supportdesk/services/search"
	"github.com/meghashyamc/supportdesk/services/ticket"
)

const (
	foundPreamble = "I found the following references:"
	notFoundReply = "I couldn’t find this in the current documents. Would you like to create a support ticket?"
)

var ErrNoPendingTicket = errors.New("no unanswered question in this session")

type Reply struct {
	SessionID     string        `json:"session_id"`
	Answer        string        `json:"answer"`
	Hits          []search.Hit  `json:"hits"`
	TicketOffered bool          `json:"ticket_offered"`
	Draft         *ticket.Draft `json:"draft,omitempty"`
}

type Service struct {
	logger    logger.Logger
	documents *documents.Service
	search    *search.Service
	tickets   *ticket.Service
	sessions  kvdb.DB

	// locks holds one *sync.Mutex per session id, held from load to save.
	locks sync.Map
}

func New(logger logger.Logger, documents *documents.Service, search *search.Service, tickets *ticket.Service, sessions kvdb.DB) *Service {
	return &Service{
		logger:    logger,
		documents: documents,
		search:    search,
		tickets:   tickets,
		sessions:  sessions,
	}
}

// Ask answers question from the loaded documents. When nothing matches, the
// question becomes the session's pending ticket and a prefilled draft is returned.
func (s *Service) Ask(ctx context.Context, sessionID string, question string) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	library, err := s.documents.Library()
	if err != nil {
		return nil, fmt.Errorf("could not load documents: %w", err)
	}

	if sessionID != "" {
		defer s.lockSession(sessionID)()
	}

	session, err := s.loadOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.History = append(session.History, Message{Role: RoleUser, Content: question})

	hits := s.search.Search(question, library)
	reply := &Reply{SessionID: session.ID, Hits: hits}

	if len(hits) > 0 {
		reply.Answer = FormatAnswer(hits)
	} else {
		reply.Answer = notFoundReply
		reply.TicketOffered = true
		session.PendingQuery = question
		draft := ticket.NewDraft(question)
		reply.Draft = &draft
	}
	session.History = append(session.History, Message{Role: RoleAssistant, Content: reply.Answer})

	if err := s.saveSession(session); err != nil {
		return nil, err
	}
	s.logger.Info("answered question", "session_id", session.ID, "hits", len(hits))

	return reply, nil
}

// Draft returns the prefilled ticket for the session's pending question.
func (s *Service) Draft(sessionID string) (*ticket.Draft, error) {
	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.PendingQuery == "" {
		return nil, ErrNoPendingTicket
	}

	draft := ticket.NewDraft(session.PendingQuery)
	return &draft, nil
}

// SubmitTicket saves t and clears the pending question of sessionID, if one is given.
func (s *Service) SubmitTicket(ctx context.Context, sessionID string, t ticketdb.Ticket) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var session *Session
	if sessionID != "" {
		defer s.lockSession(sessionID)()

		var err error
		session, err = s.loadSession(sessionID)
		if err != nil {
			return "", err
		}
	}

	message, err := s.tickets.Create(t)
	if err != nil {
		return "", err
	}

	if session != nil {
		session.PendingQuery = ""
		if err := s.saveSession(session); err != nil {
			s.logger.Warn("ticket saved but session not updated", "session_id", session.ID, "err", err.Error())
		}
	}

	return message, nil
}

func (s *Service) Session(sessionID string) (*Session, error) {
	return s.loadSession(sessionID)
}

// FormatAnswer renders hits as a markdown list citing source and page.
func FormatAnswer(hits []search.Hit) string {
	lines := make([]string, 0, len(hits)+1)
	lines = append(lines, foundPreamble)
	for _, hit := range hits {
		cite := fmt.Sprintf("**%s**", hit.Source)
		if hit.Page != nil {
			cite += fmt.Sprintf(" p.%d", *hit.Page)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s …", cite, hit.Excerpt))
	}

	return strings.Join(lines, "\n")
}

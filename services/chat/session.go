package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/supportdesk/db/kvdb"
	"github.com/meghashyamc/supportdesk/metrics"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrSessionNotFound = errors.New("session not found")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the per-conversation state: the transcript and the last
// unanswered question awaiting a ticket.
type Session struct {
	ID           string    `json:"id"`
	History      []Message `json:"history"`
	PendingQuery string    `json:"pending_query,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newSession() *Session {
	return &Session{
		ID:      uuid.New().String(),
		History: []Message{},
	}
}

func (s *Service) loadSession(id string) (*Session, error) {
	value, err := s.sessions.Get(kvdb.SessionsBucket, id)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var session Session
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		s.logger.Error("failed to unmarshal session", "session_id", id, "err", err.Error())
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}

	return &session, nil
}

// loadOrCreateSession starts a new session when id is empty or unknown.
func (s *Service) loadOrCreateSession(id string) (*Session, error) {
	if id == "" {
		return newSession(), nil
	}

	session, err := s.loadSession(id)
	if errors.Is(err, ErrSessionNotFound) {
		s.logger.Info("unknown session, starting a new one", "session_id", id)
		return newSession(), nil
	}

	return session, err
}

func (s *Service) saveSession(session *Session) error {
	session.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Error("failed to marshal session", "session_id", session.ID, "err", err.Error())
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}

	if err := s.sessions.Set(kvdb.SessionsBucket, session.ID, string(data)); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	return nil
}

// lockSession blocks until no other request is changing session id and
// returns the matching unlock.
func (s *Service) lockSession(id string) func() {
	value, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

// PruneSessions deletes sessions not updated within maxAge and returns how many
// were removed. Sessions that cannot be decoded are removed as well.
func (s *Service) PruneSessions(maxAge time.Duration) (int, error) {
	ids, err := s.sessions.GetAllKeys(kvdb.SessionsBucket)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	pruned := 0
	for _, id := range ids {
		removed, err := s.pruneSession(id, cutoff)
		if err != nil {
			return pruned, err
		}
		if removed {
			pruned++
		}
	}

	if pruned > 0 {
		metrics.SessionsPrunedTotal.Add(float64(pruned))
		s.logger.Info("pruned idle sessions", "count", pruned, "max_age", maxAge.String())
	}

	return pruned, nil
}

func (s *Service) pruneSession(id string, cutoff time.Time) (bool, error) {
	unlock := s.lockSession(id)
	defer unlock()

	session, err := s.loadSession(id)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return false, nil
	case err == nil && !session.UpdatedAt.Before(cutoff):
		return false, nil
	case err != nil:
		s.logger.Warn("removing unreadable session", "session_id", id, "err", err.Error())
	}

	if err := s.sessions.Delete(kvdb.SessionsBucket, id); err != nil {
		return false, fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	s.locks.Delete(id)

	return true, nil
}

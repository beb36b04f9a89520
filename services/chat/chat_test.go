package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/supportdesk/db/kvdb"
	"github.com/meghashyamc/supportdesk/db/ticketdb"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/documents"
	"github.com/meghashyamc/supportdesk/services/search"
	"github.com/meghashyamc/supportdesk/services/ticket"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	service    *Service
	tickets    *ticketdb.CSVStore
	dataDir    string
	sessionsDB *kvdb.BoltDB
}

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupTestService(t *testing.T, files map[string]string) *testEnv {
	assert := require.New(t)
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	assert.NoError(os.Mkdir(dataDir, 0755))
	for name, content := range files {
		assert.NoError(os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}

	log := newTestLogger()
	sessionsDB, err := kvdb.New(log, filepath.Join(root, "sessions.db"))
	assert.NoError(err)
	t.Cleanup(func() { sessionsDB.Close() })

	ticketStore, err := ticketdb.New(log, filepath.Join(root, "tickets.csv"))
	assert.NoError(err)

	service := New(
		log,
		documents.New(log, dataDir),
		search.New(log, 4, 280),
		ticket.New(log, ticketStore),
		sessionsDB,
	)

	return &testEnv{service: service, tickets: ticketStore, dataDir: dataDir, sessionsDB: sessionsDB}
}

var testDocs = map[string]string{
	"faq.txt":    "To change your password open Settings > Account.",
	"company.md": "Support is available Monday to Friday.",
}

func TestAskWithHits(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	reply, err := env.service.Ask(context.Background(), "", "password")
	assert.NoError(err)
	assert.NotEmpty(reply.SessionID)
	assert.False(reply.TicketOffered)
	assert.Nil(reply.Draft)
	assert.Len(reply.Hits, 1)
	assert.Equal("faq.txt", reply.Hits[0].Source)
	assert.Equal("I found the following references:\n- **faq.txt**: To change your password open Settings > Account. …", reply.Answer)

	session, err := env.service.Session(reply.SessionID)
	assert.NoError(err)
	assert.Equal([]Message{
		{Role: RoleUser, Content: "password"},
		{Role: RoleAssistant, Content: reply.Answer},
	}, session.History)
	assert.Empty(session.PendingQuery)
}

func TestAskWithoutHitsOffersTicket(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	reply, err := env.service.Ask(context.Background(), "", "Do you ship to Mars?")
	assert.NoError(err)
	assert.Empty(reply.Hits)
	assert.True(reply.TicketOffered)
	assert.Equal(notFoundReply, reply.Answer)
	assert.NotNil(reply.Draft)
	assert.Equal("Do you ship to Mars?", reply.Draft.Summary)

	draft, err := env.service.Draft(reply.SessionID)
	assert.NoError(err)
	assert.Equal(*reply.Draft, *draft)

	message, err := env.service.SubmitTicket(context.Background(), reply.SessionID, ticketdb.Ticket{
		Name: "Ada", Email: "ada@example.com", Summary: draft.Summary, Description: draft.Description,
	})
	assert.NoError(err)
	assert.Equal("Ticket saved to "+env.tickets.Path(), message)

	_, err = env.service.Draft(reply.SessionID)
	assert.ErrorIs(err, ErrNoPendingTicket)

	tickets, err := env.tickets.List()
	assert.NoError(err)
	assert.Len(tickets, 1)
	assert.Equal("Do you ship to Mars?", tickets[0].Summary)
}

func TestAskContinuesSession(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	first, err := env.service.Ask(context.Background(), "", "unknown topic")
	assert.NoError(err)
	second, err := env.service.Ask(context.Background(), first.SessionID, "Friday")
	assert.NoError(err)
	assert.Equal(first.SessionID, second.SessionID)

	session, err := env.service.Session(first.SessionID)
	assert.NoError(err)
	assert.Len(session.History, 4)
	assert.Equal("unknown topic", session.PendingQuery, "an answered question does not clear the pending ticket")
}

func TestAskUnknownSessionStartsNewOne(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	reply, err := env.service.Ask(context.Background(), "5a1e8a3e-2f4b-4c55-9a43-0a4b8f4f2f11", "password")
	assert.NoError(err)
	assert.NotEqual("5a1e8a3e-2f4b-4c55-9a43-0a4b8f4f2f11", reply.SessionID)
}

func TestAskMissingDataDir(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, nil)
	assert.NoError(os.RemoveAll(env.dataDir))

	_, err := env.service.Ask(context.Background(), "", "anything")
	assert.ErrorIs(err, documents.ErrDataDirMissing)
}

func TestAskCancelledContext(t *testing.T) {
	env := setupTestService(t, testDocs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.service.Ask(ctx, "", "password")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSubmitTicketWithoutSession(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	_, err := env.service.SubmitTicket(context.Background(), "", ticketdb.Ticket{Name: "Walk-in"})
	assert.NoError(err)

	_, err = env.service.SubmitTicket(context.Background(), "missing-session", ticketdb.Ticket{Name: "Lost"})
	assert.ErrorIs(err, ErrSessionNotFound)

	tickets, err := env.tickets.List()
	assert.NoError(err)
	assert.Len(tickets, 1, "a ticket for an unknown session is not written")
}

func TestDraftUnknownSession(t *testing.T) {
	env := setupTestService(t, testDocs)
	_, err := env.service.Draft("missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFormatAnswer(t *testing.T) {
	page := 3
	answer := FormatAnswer([]search.Hit{
		{Source: "manual.pdf", Page: &page, Excerpt: "hold reset"},
		{Source: "faq.txt", Excerpt: "reset password"},
	})
	require.Equal(t, "I found the following references:\n- **manual.pdf** p.3: hold reset …\n- **faq.txt**: reset password …", answer)
}

func TestConcurrentAsksKeepEveryMessage(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	first, err := env.service.Ask(context.Background(), "", "password")
	assert.NoError(err)

	const askers = 100
	start := make(chan struct{})
	errC := make(chan error, askers)
	var wg sync.WaitGroup
	for i := 0; i < askers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			question := "Friday"
			if i%2 == 0 {
				question = "Do you ship to Mars?"
			}
			_, err := env.service.Ask(context.Background(), first.SessionID, question)
			errC <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(errC)
	for err := range errC {
		assert.NoError(err)
	}

	session, err := env.service.Session(first.SessionID)
	assert.NoError(err)
	assert.Len(session.History, 2+2*askers)
}

func TestSubmitTicketClearsPendingQueryUnderConcurrentAsks(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	first, err := env.service.Ask(context.Background(), "", "Do you ship to Mars?")
	assert.NoError(err)

	const askers = 20
	start := make(chan struct{})
	errC := make(chan error, askers+1)
	var wg sync.WaitGroup
	for i := 0; i < askers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.service.Ask(context.Background(), first.SessionID, "Friday")
			errC <- err
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		_, err := env.service.SubmitTicket(context.Background(), first.SessionID, ticketdb.Ticket{Name: "Ada"})
		errC <- err
	}()
	close(start)
	wg.Wait()
	close(errC)
	for err := range errC {
		assert.NoError(err)
	}

	session, err := env.service.Session(first.SessionID)
	assert.NoError(err)
	assert.Empty(session.PendingQuery, "answered questions never bring back a submitted ticket")
	assert.Len(session.History, 2+2*askers)
}

func TestPruneSessions(t *testing.T) {
	assert := require.New(t)
	env := setupTestService(t, testDocs)

	fresh, err := env.service.Ask(context.Background(), "", "password")
	assert.NoError(err)
	stale, err := env.service.Ask(context.Background(), "", "Friday")
	assert.NoError(err)

	session, err := env.service.Session(stale.SessionID)
	assert.NoError(err)
	session.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	data, err := json.Marshal(session)
	assert.NoError(err)
	assert.NoError(env.sessionsDB.Set(kvdb.SessionsBucket, stale.SessionID, string(data)))
	assert.NoError(env.sessionsDB.Set(kvdb.SessionsBucket, "corrupt", "{not json"))

	pruned, err := env.service.PruneSessions(24 * time.Hour)
	assert.NoError(err)
	assert.Equal(2, pruned)

	_, err = env.service.Session(stale.SessionID)
	assert.ErrorIs(err, ErrSessionNotFound)
	_, err = env.service.Session(fresh.SessionID)
	assert.NoError(err)

	keys, err := env.sessionsDB.GetAllKeys(kvdb.SessionsBucket)
	assert.NoError(err)
	assert.Equal([]string{fresh.SessionID}, keys)

	pruned, err = env.service.PruneSessions(24 * time.Hour)
	assert.NoError(err)
	assert.Zero(pruned)
}

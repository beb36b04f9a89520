// Common test helpers
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/config"
	"github.com/meghashyamc/supportdesk/db/kvdb"
	"github.com/meghashyamc/supportdesk/db/ticketdb"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/chat"
	"github.com/meghashyamc/supportdesk/services/documents"
	"github.com/meghashyamc/supportdesk/services/search"
	"github.com/meghashyamc/supportdesk/services/ticket"
	"github.com/meghashyamc/supportdesk/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testFiles = map[string]string{
	"faq.txt":      "Q: How do I reset my password?\nA: Open Settings and choose Account.",
	"company.md":   "# Company\n\nOur office is open Monday to Friday.",
	"notes.txt":    "Internal notes about the warranty process.",
	"ignored.json": `{"key": "value"}`,
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse *response
}

type testServer struct {
	router      *gin.Engine
	cfg         *config.Config
	ticketStore *ticketdb.CSVStore
	chat        *chat.Service
	validator   *validation.Validator
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	tempDir := t.TempDir()
	t.Setenv("ENV", "test")
	t.Setenv("DATA_DIR", filepath.Join(tempDir, "data"))
	t.Setenv("TICKET_FILE", filepath.Join(tempDir, "tickets.csv"))
	t.Setenv("SESSION_DB_PATH", filepath.Join(tempDir, "sessions.db"))

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	for relPath, content := range testFiles {
		fullPath := filepath.Join(cfg.GetDataDir(), relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test data directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	testLogger := newTestLogger()

	kvDB, err := kvdb.New(testLogger, cfg.GetSessionDBPath())
	assert.NoError(err, "could not create kv database")
	ticketStore, err := ticketdb.New(testLogger, cfg.GetTicketFile())
	assert.NoError(err, "could not create ticket store")
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	documentsService := documents.New(testLogger, cfg.GetDataDir())
	searchService := search.New(testLogger, cfg.GetMaxHits(), cfg.GetExcerptWindow())
	chatService := chat.New(testLogger, documentsService, searchService, ticket.New(testLogger, ticketStore), kvDB)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupDocuments(router, testLogger, documentsService)
	SetupSearch(router, testLogger, documentsService, searchService, validator)
	SetupChat(router, testLogger, chatService, validator)
	SetupTickets(router, testLogger, chatService, validator)

	t.Cleanup(func() {
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, cfg: cfg, ticketStore: ticketStore, chat: chatService, validator: validator}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

// decodeData unmarshals the "data" member of the response envelope into out.
func decodeData(assert *require.Assertions, body []byte, out any) {
	envelope := struct {
		Data   json.RawMessage `json:"data"`
		Errors []string        `json:"errors"`
	}{}
	assert.NoError(json.Unmarshal(body, &envelope), "could not unmarshal response %s", string(body))
	assert.NoError(json.Unmarshal(envelope.Data, out), "could not unmarshal data %s", string(envelope.Data))
}

func decodeEnvelope(assert *require.Assertions, body []byte, out *response) {
	assert.NoError(json.Unmarshal(body, out), "could not unmarshal response %s", string(body))
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

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
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionPruneInterval = time.Hour
)

type server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	kvdb       kvdb.DB
	documents  *documents.Service
	search     *search.Service
	chat       *chat.Service
	validator  *validation.Validator
	logger     logger.Logger
}

// Run serves the API until ctx is cancelled or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	defer s.kvdb.Close()

	s.warmDocumentCache()
	s.setupRouter()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pruneSessionsPeriodically(ctx)
	}()

	err := s.serve(ctx)
	cancel()
	wg.Wait()

	return err
}

func (s *server) setupDependencies() error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetSessionDBPath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	ticketStore, err := ticketdb.New(s.logger, s.cfg.GetTicketFile())
	if err != nil {
		s.logger.Error("error creating ticket store", "err", err.Error())
		s.kvdb.Close()
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.kvdb.Close()
		return err
	}

	s.documents = documents.New(s.logger, s.cfg.GetDataDir())
	s.search = search.New(s.logger, s.cfg.GetMaxHits(), s.cfg.GetExcerptWindow())
	s.chat = chat.New(s.logger, s.documents, s.search, ticket.New(s.logger, ticketStore), s.kvdb)

	return nil
}

// warmDocumentCache loads documents up front. A missing data directory is
// reported to users per request, so it does not stop the server.
func (s *server) warmDocumentCache() {
	if _, err := s.documents.Library(); err != nil {
		s.logger.Warn("documents not loaded at startup", "dir", s.documents.DataDir(), "err", err.Error())
	}
}

// pruneSessionsPeriodically deletes idle chat sessions at startup and then
// every sessionPruneInterval until ctx is done.
func (s *server) pruneSessionsPeriodically(ctx context.Context) {
	maxAge := s.cfg.GetSessionMaxAge()
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		if _, err := s.chat.PruneSessions(maxAge); err != nil {
			s.logger.Warn("could not prune sessions", "err", err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *server) setupRouter() {
	router := newRouter(s.logger)

	setupRoutes(router, routeDependencies{
		logger:        s.logger,
		documents:     s.documents,
		search:        s.search,
		chat:          s.chat,
		validator:     s.validator,
		ticketLimiter: newTicketLimiter(s.cfg.GetTicketRatePerMinute()),
	})

	s.router = router
}

func (s *server) serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/api/handlers"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/metrics"
	"github.com/meghashyamc/supportdesk/services/chat"
	"github.com/meghashyamc/supportdesk/services/documents"
	"github.com/meghashyamc/supportdesk/services/search"
	"github.com/meghashyamc/supportdesk/ui"
	"github.com/meghashyamc/supportdesk/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type routeDependencies struct {
	logger        logger.Logger
	documents     *documents.Service
	search        *search.Service
	chat          *chat.Service
	validator     *validation.Validator
	ticketLimiter *rate.Limiter
}

func setupRoutes(router *gin.Engine, deps routeDependencies) {
	router.GET("/health", health())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve the embedded chat widget
	router.StaticFS("/ui", http.FS(ui.Files))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/ui/")
	})

	handlers.SetupDocuments(router, deps.logger, deps.documents)
	handlers.SetupSearch(router, deps.logger, deps.documents, deps.search, deps.validator)
	handlers.SetupChat(router, deps.logger, deps.chat, deps.validator)
	handlers.SetupTickets(router, deps.logger, deps.chat, deps.validator, rateLimitMiddleware(deps.logger, deps.ticketLimiter))
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter(logger logger.Logger) *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(_CORSMiddleware())
	router.Use(metrics.Middleware())
	router.Use(loggingMiddleware(logger))

	return router
}

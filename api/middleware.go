package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/logger"
	"golang.org/x/time/rate"
)

func loggingMiddleware(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	}
}

// rateLimitMiddleware rejects requests once the shared limiter is exhausted.
func rateLimitMiddleware(logger logger.Logger, limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded", "method", c.Request.Method, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"data": nil, "errors": []string{"too many requests, please try again shortly"}})
			return
		}
		c.Next()
	}
}

// _CORSMiddleware starts with _ so that it is not imported outside of the server package.
func _CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With") // nolint:lll
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	}
}

// newTicketLimiter allows ratePerMinute submissions per minute with a burst of the same size.
func newTicketLimiter(ratePerMinute int) *rate.Limiter {
	if ratePerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60), ratePerMinute)
}

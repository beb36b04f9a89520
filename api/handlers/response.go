package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/chat"
	"github.com/meghashyamc/supportdesk/services/documents"
)

const dataDirMissingMessage = "data folder not found. Please add your PDFs and .md/.txt files."

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

// writeError maps service errors onto status codes and user-facing messages.
func writeError(c *gin.Context, logger logger.Logger, action string, err error) {
	c.Abort()

	switch {
	case errors.Is(err, documents.ErrDataDirMissing):
		logger.Warn(action+" failed, data directory missing", "err", err.Error())
		writeResponse(c, nil, http.StatusServiceUnavailable, []string{dataDirMissingMessage})
	case errors.Is(err, chat.ErrSessionNotFound):
		logger.Warn(action+" failed, unknown session", "err", err.Error())
		writeResponse(c, nil, http.StatusNotFound, []string{"session not found"})
	case errors.Is(err, chat.ErrNoPendingTicket):
		writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn(action+" cancelled", "err", err.Error())
		writeResponse(c, nil, http.StatusRequestTimeout, []string{"request cancelled"})
	default:
		logger.Error(action+" failed", "err", err.Error())
		writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
	}
}

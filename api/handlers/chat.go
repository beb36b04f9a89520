package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/chat"
	"github.com/meghashyamc/supportdesk/validation"
)

type ChatRequest struct {
	SessionID string `json:"session_id" validate:"valid_session_id"`
	Message   string `json:"message" validate:"required,valid_query,max=1000"`
}

type SessionURI struct {
	ID string `uri:"id" json:"id" validate:"required,valid_session_id"`
}

func SetupChat(router *gin.Engine, logger logger.Logger, service *chat.Service, validator *validation.Validator) {
	router.POST("/chat", handleChat(service, logger, validator))
	router.GET("/sessions/:id", handleGetSession(service, logger, validator))
	router.GET("/sessions/:id/draft", handleGetDraft(service, logger, validator))
}

func handleChat(service *chat.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ChatRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from chat request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate chat request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		reply, err := service.Ask(c.Request.Context(), request.SessionID, request.Message)
		if err != nil {
			writeError(c, logger, "chat", err)
			return
		}

		writeResponse(c, reply, http.StatusOK, nil)
	}
}

func handleGetSession(service *chat.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := bindSessionID(c, logger, validator)
		if !ok {
			return
		}

		session, err := service.Session(sessionID)
		if err != nil {
			writeError(c, logger, "get session", err)
			return
		}

		writeResponse(c, session, http.StatusOK, nil)
	}
}

func handleGetDraft(service *chat.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := bindSessionID(c, logger, validator)
		if !ok {
			return
		}

		draft, err := service.Draft(sessionID)
		if err != nil {
			writeError(c, logger, "get ticket draft", err)
			return
		}

		writeResponse(c, draft, http.StatusOK, nil)
	}
}

func bindSessionID(c *gin.Context, logger logger.Logger, validator *validation.Validator) (string, bool) {
	uri := SessionURI{}
	if err := c.ShouldBindUri(&uri); err != nil {
		logger.Warn("could not extract session id from path", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract session id"})
		return "", false
	}

	if err := validator.Validate(uri); err != nil {
		c.Abort()
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return "", false
	}

	return uri.ID, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/db/ticketdb"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/chat"
	"github.com/meghashyamc/supportdesk/validation"
)

// TicketRequest fields are free text; only the session id is checked.
type TicketRequest struct {
	SessionID   string `json:"session_id" validate:"valid_session_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

type TicketResponse struct {
	Message string `json:"message"`
}

func SetupTickets(router *gin.Engine, logger logger.Logger, service *chat.Service, validator *validation.Validator, middlewares ...gin.HandlerFunc) {
	handlers := append(middlewares, handleCreateTicket(service, logger, validator))
	router.POST("/tickets", handlers...)
}

func handleCreateTicket(service *chat.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := TicketRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from ticket request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate ticket request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		message, err := service.SubmitTicket(c.Request.Context(), request.SessionID, ticketdb.Ticket{
			Name:        request.Name,
			Email:       request.Email,
			Summary:     request.Summary,
			Description: request.Description,
		})
		if err != nil {
			writeError(c, logger, "create ticket", err)
			return
		}

		writeResponse(c, TicketResponse{Message: message}, http.StatusCreated, nil)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/documents"
	"github.com/meghashyamc/supportdesk/services/search"
	"github.com/meghashyamc/supportdesk/validation"
)

type SearchRequest struct {
	Query string `form:"query" json:"query" validate:"required,valid_query,min=1,max=1000"`
}

type SearchResponse struct {
	Hits          []search.Hit `json:"hits"`
	TicketOffered bool         `json:"ticket_offered"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, documents *documents.Service, service *search.Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(documents, service, logger, validator))
}

func handleSearch(documents *documents.Service, service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		library, err := documents.Library()
		if err != nil {
			writeError(c, logger, "search", err)
			return
		}

		hits := service.Search(request.Query, library)
		writeResponse(c, SearchResponse{Hits: hits, TicketOffered: len(hits) == 0}, http.StatusOK, nil)
	}
}

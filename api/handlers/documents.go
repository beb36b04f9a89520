package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/documents"
)

type DocumentSummary struct {
	Name  string         `json:"name"`
	Kind  documents.Kind `json:"kind"`
	Pages int            `json:"pages,omitempty"`
}

type DocumentsResponse struct {
	Files     []string                `json:"files"`
	Documents []DocumentSummary       `json:"documents"`
	Warnings  []documents.LoadWarning `json:"warnings"`
	LoadedAt  time.Time               `json:"loaded_at"`
}

func SetupDocuments(router *gin.Engine, logger logger.Logger, service *documents.Service) {
	router.GET("/documents", handleListDocuments(service, logger))
	router.POST("/documents/reload", handleReloadDocuments(service, logger))
}

func handleListDocuments(service *documents.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		library, err := service.Library()
		if err != nil {
			writeError(c, logger, "list documents", err)
			return
		}
		writeDocuments(c, logger, service, library)
	}
}

func handleReloadDocuments(service *documents.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		library, err := service.Reload()
		if err != nil {
			writeError(c, logger, "reload documents", err)
			return
		}
		writeDocuments(c, logger, service, library)
	}
}

func writeDocuments(c *gin.Context, logger logger.Logger, service *documents.Service, library *documents.Library) {
	files, err := service.Files()
	if err != nil {
		writeError(c, logger, "list data directory", err)
		return
	}

	summaries := make([]DocumentSummary, 0, len(library.Documents))
	for _, doc := range library.Documents {
		summaries = append(summaries, DocumentSummary{Name: doc.Name, Kind: doc.Kind, Pages: len(doc.Pages)})
	}

	warnings := library.Warnings
	if warnings == nil {
		warnings = []documents.LoadWarning{}
	}

	writeResponse(c, DocumentsResponse{
		Files:     files,
		Documents: summaries,
		Warnings:  warnings,
		LoadedAt:  library.LoadedAt,
	}, http.StatusOK, nil)
}

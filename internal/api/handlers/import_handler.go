// internal/api/handlers/import_handler.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tradewindhq/planboard/internal/service"
)

// Forecast uploads are small CSVs; anything bigger is almost certainly the
// wrong file.
const maxImportSize = 10 << 20

type ImportHandler struct {
	importService *service.ImportService
}

func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportForecasts accepts a multipart CSV upload of weekly forecast rows and
// upserts them. Rows fail independently; the response carries the tally.
func (h *ImportHandler) ImportForecasts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	result, err := h.importService.ImportForecastCSV(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import forecasts"})
		return
	}

	c.JSON(http.StatusOK, result)
}

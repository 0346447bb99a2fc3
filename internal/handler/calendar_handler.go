package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	"github.com/GAMA-00/gato-app-sub001/internal/service"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
	"github.com/GAMA-00/gato-app-sub001/pkg/response"
)

type calendarReadService interface {
	Occurrences(ctx context.Context, req dto.CalendarRequest) ([]models.Occurrence, error)
}

type agendaExportService interface {
	Generate(ctx context.Context, req dto.AgendaExportRequest) (*service.AgendaExport, error)
}

// CalendarHandler serves the reconciled provider calendar and its exports.
type CalendarHandler struct {
	calendar calendarReadService
	exports  agendaExportService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendar calendarReadService, exports agendaExportService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, exports: exports}
}

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("from")))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("to")))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
		return time.Time{}, time.Time{}, false
	}
	// to is inclusive at the day level
	return from, to.AddDate(0, 0, 1), true
}

// Calendar godoc
// @Summary Reconciled provider calendar
// @Tags Calendar
// @Produce json
// @Param id path string true "Provider ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end, inclusive (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /providers/{id}/calendar [get]
func (h *CalendarHandler) Calendar(c *gin.Context) {
	if h.calendar == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	occurrences, err := h.calendar.Occurrences(c.Request.Context(), dto.CalendarRequest{
		ProviderID: c.Param("id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrences, nil)
}

// Export godoc
// @Summary Provider agenda as CSV or PDF
// @Tags Calendar
// @Produce octet-stream
// @Param id path string true "Provider ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end, inclusive (YYYY-MM-DD)"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /providers/{id}/agenda/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = dto.ExportFormatCSV
	}

	export, err := h.exports.Generate(c.Request.Context(), dto.AgendaExportRequest{
		ProviderID: c.Param("id"),
		From:       from,
		To:         to,
		Format:     format,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Payload)
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService services.ReportService
	location      *time.Location
}

// NewReportHandler parses date-only query values as midnight in location.
func NewReportHandler(reportService services.ReportService, location *time.Location) *ReportHandler {
	if location == nil {
		location = time.Local
	}
	return &ReportHandler{reportService: reportService, location: location}
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	start, err := h.parseBound(c.Query("start"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := h.parseBound(c.Query("end"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.Build(c.Request.Context(), services.ReportQuery{
		Start:  start,
		End:    end,
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// parseBound accepts RFC3339 timestamps, timestamps without an offset (read
// in the report location) or plain dates. A plain date used as an end bound
// covers the whole day.
func (h *ReportHandler) parseBound(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	// An unescaped "+03:00" offset arrives as " 03:00".
	value = strings.Replace(value, " ", "+", 1)

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, h.location); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, h.location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD or an ISO 8601 timestamp", value)
	}
	if endOfDay {
		_, t = services.DayBounds(t, h.location)
	}
	return &t, nil
}

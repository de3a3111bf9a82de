package handlers

import (
	"errors"
	"net/http"
	"time"

	"bellalarm/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// queryTimeLayouts are tried in order; the date-only one must stay last.
var queryTimeLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// @Summary      List logs
// @Description  Bell history filtered by time (RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD') and event type. A date-only 'to' covers that whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range, inclusive"  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(INTENT,MOTOR_START,MOTOR_STOPPING,MOTOR_STOPPED,ALARM)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	f := service.LogFilter{Type: c.Query("type")}

	if s := c.Query("from"); s != "" {
		var err error
		if f.From, _, err = parseQueryTime(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from': " + err.Error()})
			return
		}
	}
	if s := c.Query("to"); s != "" {
		var (
			dateOnly bool
			err      error
		)
		if f.To, dateOnly, err = parseQueryTime(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to': " + err.Error()})
			return
		}
		if dateOnly {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrInvalidTimeRange), errors.Is(err, service.ErrUnknownEventType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseQueryTime parses s in UTC and reports whether it carried a date only.
func parseQueryTime(s string) (t time.Time, dateOnly bool, err error) {
	for _, layout := range queryTimeLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), layout == layoutDate, nil
		}
	}
	return time.Time{}, false, errors.New("use RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'")
}

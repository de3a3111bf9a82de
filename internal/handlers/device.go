package handlers

import (
	"errors"
	"net/http"

	"bellalarm/internal/models"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusApplied = "applied"

	errApplyIntent     = "failed to apply intent"
	errGetStatus       = "failed to load status"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// IntentRequest is the payload of POST /api/v1/device/intent.
type IntentRequest struct {
	// Motor checkbox state
	MotorButtonOn bool `json:"motorButtonOn" example:"true"`
	// Alarm checkbox state
	AlarmButtonOn bool `json:"alarmButtonOn" example:"false"`
	// Alarm time as HH:MM
	AlarmTime string `json:"alarmTime" binding:"required" example:"06:30"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get device status
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.DeviceStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "device_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Apply user intent
// @Description  Same effect as an intent frame on /ws
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body   IntentRequest  true  "Intent payload"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/device/intent [post]
func (h *Handler) applyIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	st, err := h.services.Device.Apply(c.Request.Context(), models.UserIntent{
		MotorButtonOn: req.MotorButtonOn,
		AlarmButtonOn: req.AlarmButtonOn,
		AlarmTime:     req.AlarmTime,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidAlarmTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errApplyIntent, "device_apply_failed", err, "alarm_time", req.AlarmTime)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "state": st})
}

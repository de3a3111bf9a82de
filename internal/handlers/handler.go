package handlers

import (
	"time"

	_ "bellalarm/docs"
	"bellalarm/internal/logger"
	"bellalarm/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	wsInterval time.Duration
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log, wsInterval: defaultInterval}
}

// WithStatusInterval sets how often /ws re-checks the device status.
// Values outside (0, maxInterval] are ignored.
func (h *Handler) WithStatusInterval(d time.Duration) *Handler {
	if d > 0 && d <= maxInterval {
		h.wsInterval = d
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestID, h.accessLog)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Device gateway (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerDeviceRoutes(api)
		api.GET("/logs", h.getLogs)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	device := api.Group("/device")
	{
		device.GET("/status", h.getStatus)
		// Body example: {"motorButtonOn":true,"alarmButtonOn":false,"alarmTime":"06:30"}
		device.POST("/intent", h.applyIntent)
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/streamworks/eventstream/docs"
	"github.com/streamworks/eventstream/internal/domain"
	"github.com/streamworks/eventstream/internal/dto"
	"github.com/streamworks/eventstream/internal/service"
)

const maxBulkEvents = 1000

// Handler serves the ingestion API
type Handler struct {
	ingestor service.EventIngestor
	router   *gin.Engine
	log      *zap.Logger
}

// NewHandler creates a new ingestion API handler
func NewHandler(ingestor service.EventIngestor, log *zap.Logger) *Handler {
	h := &Handler{
		ingestor: ingestor,
		router:   gin.Default(),
		log:      log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.ingestEvent)
	h.router.POST("/events/bulk", h.ingestEventsBulk)
	h.router.GET("/metrics", h.hourlyMetrics)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ingestEvent handles POST /events
// @Summary Ingest a single event
// @Description Validate, enrich, and route one event into the pipeline
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.IngestEventRequest true "Event payload"
// @Success 202 {object} dto.IngestEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) ingestEvent(c *gin.Context) {
	var req dto.IngestEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Malformed event payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_json",
			Message: "request body is not valid JSON",
		})
		return
	}

	eventID, err := h.ingestor.IngestEvent(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.rejectEvent(c, err, req)
		return
	}

	h.log.Info("Event accepted",
		zap.String("event_id", eventID),
		zap.String("event_type", req.EventType))

	c.JSON(http.StatusAccepted, dto.IngestEventResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// ingestEventsBulk handles POST /events/bulk
// @Summary Ingest multiple events
// @Description Validate, enrich, and route multiple events; failures are reported per event
// @Tags events
// @Accept json
// @Produce json
// @Param events body dto.IngestEventsBulkRequest true "Bulk event payload"
// @Success 202 {object} dto.IngestEventsBulkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /events/bulk [post]
func (h *Handler) ingestEventsBulk(c *gin.Context) {
	var req dto.IngestEventsBulkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Malformed bulk payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_json",
			Message: "request body is not valid JSON",
		})
		return
	}

	if len(req.Events) == 0 || len(req.Events) > maxBulkEvents {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_failed",
			Message: "events must contain between 1 and 1000 entries",
		})
		return
	}

	raws := make([]domain.RawEvent, 0, len(req.Events))
	for _, e := range req.Events {
		raws = append(raws, e.ToDomain())
	}

	eventIDs, ingestErrors := h.ingestor.IngestBulk(c.Request.Context(), raws)

	h.log.Info("Bulk events processed",
		zap.Int("accepted", len(eventIDs)),
		zap.Int("rejected", len(ingestErrors)),
		zap.Int("total", len(req.Events)))

	c.JSON(http.StatusAccepted, dto.IngestEventsBulkResponse{
		Accepted: len(eventIDs),
		Rejected: len(ingestErrors),
		EventIDs: eventIDs,
		Errors:   ingestErrors,
	})
}

// hourlyMetrics handles GET /metrics
// @Summary Hourly counter totals
// @Description Read the per-type event counters for one hour window
// @Tags metrics
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)" example:"2026-08-30"
// @Param hour query string true "Hour window (HH:00)" example:"14:00"
// @Success 200 {object} dto.HourlyMetricsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /metrics [get]
func (h *Handler) hourlyMetrics(c *gin.Context) {
	var req dto.HourlyMetricsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_failed",
			Message: "date and hour query parameters are required",
		})
		return
	}

	response, err := h.ingestor.HourlyMetrics(c.Request.Context(), req.Date, req.Hour)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation_failed",
				Details: fieldDetails(validationErr),
			})
			return
		}

		h.log.Error("Failed to read hourly metrics",
			zap.String("date", req.Date),
			zap.String("hour", req.Hour),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to read metrics",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// rejectEvent maps an ingestion failure to a caller-visible response.
// Validation problems carry field-level detail; everything else is opaque.
func (h *Handler) rejectEvent(c *gin.Context, err error, req dto.IngestEventRequest) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		h.log.Warn("Event rejected",
			zap.String("event_type", req.EventType),
			zap.Int("violations", len(validationErr.Fields)))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_failed",
			Details: fieldDetails(validationErr),
		})
		return
	}

	h.log.Error("Failed to ingest event",
		zap.String("event_type", req.EventType),
		zap.String("user_id", req.UserID),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "internal_error",
		Message: "failed to ingest event",
	})
}

func fieldDetails(err *domain.ValidationError) []dto.FieldErrorDetail {
	details := make([]dto.FieldErrorDetail, 0, len(err.Fields))
	for _, f := range err.Fields {
		details = append(details, dto.FieldErrorDetail{Field: f.Field, Message: f.Message})
	}
	return details
}

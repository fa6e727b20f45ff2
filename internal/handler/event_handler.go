package handler

import (
	"errors"
	"net/http"
	"time"

	"go-event-registration/internal/model"
	"go-event-registration/internal/service"
	apperrors "go-event-registration/pkg/app_errors"
	"go-event-registration/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	public := r.Group("/api/v1")
	{
		public.GET("events", h.List)
		public.GET("events/upcoming", h.ListUpcoming)
		public.GET("events/featured", h.ListFeatured)
		public.GET("events/:uuid", h.GetByEventID)
	}

	admin := r.Group("/api/v1", IdentityMiddleware(), RequireAdmin())
	{
		admin.POST("events", h.Create)
		admin.GET("events/admin/all", h.ListAdmin)
		admin.GET("events/:uuid/admin", h.GetByEventIDAdmin)
		admin.PATCH("events/:uuid", h.Update)
		admin.PATCH("events/:uuid/publish", h.Publish)
		admin.PATCH("events/:uuid/cancel", h.Cancel)
		admin.DELETE("events/:uuid", h.Delete)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Location    string    `json:"location" binding:"required,max=500"`
	Capacity    int       `json:"capacity" binding:"required,min=1,max=100000"`
	Status      *string   `json:"status"`
	ImageURL    *string   `json:"image_url"`
	Price       float64   `json:"price"`
	IsFeatured  bool      `json:"is_featured"`
}

// UpdateEventRequest 更新活動請求。狀態轉換走 publish/cancel 端點，這裡不收 status。
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location"`
	Capacity    *int       `json:"capacity"`
	ImageURL    *string    `json:"image_url"`
	Price       *float64   `json:"price"`
	IsFeatured  *bool      `json:"is_featured"`
}

type listEventsQuery struct {
	Status *model.EventStatus `form:"status"`
}

type upcomingQuery struct {
	Limit int `form:"limit"`
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		IsFeatured:  req.IsFeatured,
	}
	if req.Status != nil {
		event.Status = model.EventStatus(*req.Status)
	}

	created, err := h.service.Create(c, event, CurrentUser(c))
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) List(c *gin.Context) {
	var query listEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	events, err := h.service.List(c, query.Status, false)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListAdmin(c *gin.Context) {
	var query listEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	events, err := h.service.List(c, query.Status, true)
	if err != nil {
		h.handleError(c, err, "ListAdmin")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListUpcoming(c *gin.Context) {
	var query upcomingQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	events, err := h.service.ListUpcoming(c, query.Limit)
	if err != nil {
		h.handleError(c, err, "ListUpcoming")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListFeatured(c *gin.Context) {
	events, err := h.service.ListFeatured(c)
	if err != nil {
		h.handleError(c, err, "ListFeatured")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	event, err := h.service.GetByEventID(c, eventID, false)
	if err != nil {
		h.handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetByEventIDAdmin(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	event, err := h.service.GetByEventID(c, eventID, true)
	if err != nil {
		h.handleError(c, err, "GetByEventIDAdmin")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateEventParams{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		IsFeatured:  req.IsFeatured,
	}

	updated, err := h.service.Update(c, eventID, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Publish(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	published, err := h.service.Publish(c, eventID)
	if err != nil {
		h.handleError(c, err, "Publish")
		return
	}
	c.JSON(http.StatusOK, published)
}

func (h *EventHandler) Cancel(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	cancelled, err := h.service.Cancel(c, eventID)
	if err != nil {
		h.handleError(c, err, "Cancel")
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func (h *EventHandler) Delete(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c, eventID); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func parseUUIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrStartDateNotFuture),
		errors.Is(err, apperrors.ErrEndBeforeStart),
		errors.Is(err, apperrors.ErrDurationTooLong):
		log.Warn("Invalid event dates")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrCapacityTooLow):
		log.Warn("Capacity below registered count")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrEventNotDraft),
		errors.Is(err, apperrors.ErrEventStarted),
		errors.Is(err, apperrors.ErrEventAlreadyCancelled),
		errors.Is(err, apperrors.ErrEventCompleted),
		errors.Is(err, apperrors.ErrEventHasRegistrations):
		log.Warn("Event state conflict")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

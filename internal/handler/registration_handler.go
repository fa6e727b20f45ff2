package handler

import (
	"errors"
	"net/http"

	"go-event-registration/internal/model"
	"go-event-registration/internal/service"
	apperrors "go-event-registration/pkg/app_errors"
	"go-event-registration/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegistrationHandler struct {
	service service.RegistrationService
}

func NewRegistrationHandler(service service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

func (h *RegistrationHandler) RegisterRoutes(r *gin.Engine) {
	authed := r.Group("/api/v1", IdentityMiddleware())
	{
		authed.POST("registrations", h.Create)
		authed.GET("registrations/my", h.ListMine)
		authed.GET("registrations/check/:uuid", h.CheckRegistration)
		authed.GET("registrations/:uuid", h.GetByRegistrationID)
		authed.PATCH("registrations/:uuid/cancel", h.Cancel)
	}

	admin := r.Group("/api/v1", IdentityMiddleware(), RequireAdmin())
	{
		admin.GET("registrations", h.List)
		admin.GET("registrations/event/:uuid", h.ListByEvent)
		admin.GET("registrations/event/:uuid/pending", h.ListPendingByEvent)
		admin.GET("registrations/stats/:uuid", h.GetEventStats)
		admin.PATCH("registrations/:uuid", h.Update)
		admin.PATCH("registrations/:uuid/validate", h.Validate)
		admin.PATCH("registrations/:uuid/refuse", h.Refuse)
		admin.DELETE("registrations/:uuid", h.Remove)
	}
}

// CreateRegistrationRequest 報名請求
type CreateRegistrationRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
	Notes   *string   `json:"notes"`
}

// UpdateRegistrationRequest 管理者更新報名請求（僅備註）
type UpdateRegistrationRequest struct {
	Notes *string `json:"notes"`
}

func (h *RegistrationHandler) Create(c *gin.Context) {
	var req CreateRegistrationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Create(c, req.EventID, req.Notes, CurrentUser(c))
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RegistrationHandler) Cancel(c *gin.Context) {
	registrationID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	cancelled, err := h.service.Cancel(c, registrationID, CurrentUser(c))
	if err != nil {
		h.handleError(c, err, "Cancel")
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func (h *RegistrationHandler) Validate(c *gin.Context) {
	registrationID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	confirmed, err := h.service.Validate(c, registrationID)
	if err != nil {
		h.handleError(c, err, "Validate")
		return
	}
	c.JSON(http.StatusOK, confirmed)
}

func (h *RegistrationHandler) Refuse(c *gin.Context) {
	registrationID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	refused, err := h.service.Refuse(c, registrationID)
	if err != nil {
		h.handleError(c, err, "Refuse")
		return
	}
	c.JSON(http.StatusOK, refused)
}

func (h *RegistrationHandler) Update(c *gin.Context) {
	registrationID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	var req UpdateRegistrationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	updated, err := h.service.Update(c, registrationID, model.UpdateRegistrationParams{Notes: req.Notes})
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RegistrationHandler) Remove(c *gin.Context) {
	registrationID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c, registrationID); err != nil {
		h.handleError(c, err, "Remove")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) List(c *gin.Context) {
	registrations, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) ListByEvent(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	registrations, err := h.service.ListByEvent(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) ListPendingByEvent(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	registrations, err := h.service.ListPendingByEvent(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListPendingByEvent")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) ListMine(c *gin.Context) {
	registrations, err := h.service.ListByUser(c, CurrentUser(c).ID)
	if err != nil {
		h.handleError(c, err, "ListMine")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) GetByRegistrationID(c *gin.Context) {
	registrationID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	registration, err := h.service.GetByRegistrationID(c, registrationID)
	if err != nil {
		h.handleError(c, err, "GetByRegistrationID")
		return
	}

	// 一般使用者只能看自己的報名
	user := CurrentUser(c)
	if !user.IsAdmin() && !registration.IsOwnedBy(user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		return
	}

	c.JSON(http.StatusOK, registration)
}

func (h *RegistrationHandler) CheckRegistration(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	isRegistered, err := h.service.IsRegistered(c, CurrentUser(c).ID, eventID)
	if err != nil {
		h.handleError(c, err, "CheckRegistration")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_registered": isRegistered})
}

func (h *RegistrationHandler) GetEventStats(c *gin.Context) {
	eventID, ok := parseUUIDParam(c)
	if !ok {
		return
	}
	stats, err := h.service.GetEventStats(c, eventID)
	if err != nil {
		h.handleError(c, err, "GetEventStats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RegistrationHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrRegistrationNotFound):
		log.Warn("Registration not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
	case errors.Is(err, apperrors.ErrEventFull):
		log.Warn("Event full")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		log.Warn("Already registered")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrEventNotPublished),
		errors.Is(err, apperrors.ErrEventPast):
		log.Warn("Event not open for registration")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRegistrationAlreadyCancelled),
		errors.Is(err, apperrors.ErrRegistrationNotPending):
		log.Warn("Registration state conflict")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotRegistrationOwner):
		log.Warn("Not registration owner")
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// File: internal/engine/handler.go
package engine

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"roadassist_backend/internal/common"
	"roadassist_backend/internal/domain"
)

type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// RegisterRoutes sets up the session lifecycle routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", h.attach)
	router.DELETE("/:session_id", h.detach)
	router.POST("/:session_id/location", h.reportLocation)
}

func (h *Handler) attach(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	session, _ := h.manager.Register(actor)
	common.RespondCreated(c, "Session attached.", gin.H{"session_id": session.ID})
}

func (h *Handler) detach(c *gin.Context) {
	session, apiErr := h.ownedSession(c)
	if apiErr != nil {
		common.RespondWithError(c, apiErr)
		return
	}

	h.manager.Unregister(session.ID)
	common.RespondOK(c, "Session detached.", nil)
}

type locationReportRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

func (h *Handler) reportLocation(c *gin.Context) {
	session, apiErr := h.ownedSession(c)
	if apiErr != nil {
		common.RespondWithError(c, apiErr)
		return
	}

	var req locationReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	consumed := session.Source().Report(domain.Coordinates{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	// Reports outside an active watch are dropped, not errors: the watcher
	// decides when tracking is on.
	common.RespondOK(c, "Location report received.", gin.H{"tracking": consumed})
}

func (h *Handler) ownedSession(c *gin.Context) (*Session, *common.APIError) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		return nil, common.ErrUnauthorized.WithDetails("Actor identity not established.")
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid session ID format.")
	}

	session, found := h.manager.Get(sessionID)
	if !found {
		return nil, common.ErrNotFound.WithDetails("Session not found.")
	}
	if session.Actor.RecipientKey() != actor.RecipientKey() {
		return nil, common.ErrForbidden.WithDetails("Session belongs to another actor.")
	}
	return session, nil
}

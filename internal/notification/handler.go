package notification

import (
	"roadassist_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
// All routes in this group require an identified actor.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.getNotifications)
	router.GET("/unread-count", h.getUnreadCount)
	router.POST("/:event_id/mark-read", h.markAsRead)
	router.POST("/mark-all-read", h.markAllAsRead)
	router.DELETE("", h.clearAll)
}

func (h *Handler) getNotifications(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)

	events, pagination, err := h.service.GetForRecipient(c.Request.Context(), actor.RecipientKey(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", events, pagination)
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	count := h.service.UnreadCount(actor.RecipientKey())
	common.RespondOK(c, "Unread count retrieved.", gin.H{"unread_count": count})
}

func (h *Handler) markAsRead(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	eventID, err := uuid.Parse(c.Param("event_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), eventID, actor.RecipientKey()); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllAsRead(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	count, err := h.service.MarkAllRead(c.Request.Context(), actor.RecipientKey())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", gin.H{"marked_count": count})
}

func (h *Handler) clearAll(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	count, err := h.service.Clear(c.Request.Context(), actor.RecipientKey())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notifications cleared.", gin.H{"cleared_count": count})
}

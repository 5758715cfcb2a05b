package chat

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"roadassist_backend/internal/common"
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

// RegisterRoutes sets up the routes for conversation operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/:booking_id/messages", h.getHistory)
	router.POST("/:booking_id/messages", h.appendMessage)
}

type appendMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

func (h *Handler) getHistory(c *gin.Context) {
	if _, ok := common.GetActorFromContext(c); !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	history := h.service.History(c.Request.Context(), c.Param("booking_id"))
	common.RespondOK(c, "Conversation retrieved successfully.", history)
}

func (h *Handler) appendMessage(c *gin.Context) {
	actor, ok := common.GetActorFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
		return
	}

	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	msg, err := h.service.Append(c.Request.Context(), c.Param("booking_id"), actor.Role, req.Text)
	if err != nil {
		h.logger.Error("Failed to append chat message",
			zap.String("bookingID", c.Param("booking_id")), zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not send message."))
		return
	}
	common.RespondCreated(c, "Message sent.", msg)
}

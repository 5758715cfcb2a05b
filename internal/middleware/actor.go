// File: internal/middleware/actor.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadassist_backend/internal/common"
	"roadassist_backend/internal/domain"
)

// ActorIdentity creates a Gin middleware that establishes the acting
// customer or mechanic from request headers. Identity is declared, not
// authenticated; routes that need an actor reject requests without one.
func ActorIdentity(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader(common.ActorRoleHeader)
		id := c.GetHeader(common.ActorIDHeader)

		if role == "" && id == "" {
			// Anonymous request. Handlers decide whether that is acceptable.
			c.Next()
			return
		}

		if role != string(domain.RoleCustomer) && role != string(domain.RoleMechanic) {
			logger.Debug("Rejected unknown actor role", zap.String("role", role))
			common.RespondWithError(c, common.ErrBadRequest.WithDetails(
				"Header "+common.ActorRoleHeader+" must be 'customer' or 'mechanic'."))
			return
		}
		if id == "" {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails(
				"Header "+common.ActorIDHeader+" is required alongside "+common.ActorRoleHeader+"."))
			return
		}

		common.SetActorInContext(c, domain.Actor{
			Role: domain.Role(role),
			ID:   id,
			Name: c.GetHeader(common.ActorNameHeader),
		})
		c.Next()
	}
}

// RequireActor rejects requests that reach it without an established actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := common.GetActorFromContext(c); !ok {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Actor identity not established."))
			return
		}
		c.Next()
	}
}

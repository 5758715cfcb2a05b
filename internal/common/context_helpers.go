// File: internal/common/context_helpers.go
package common

import (
	"github.com/gin-gonic/gin"

	"roadassist_backend/internal/domain"
)

// SetActorInContext stores the identified actor in the Gin context.
func SetActorInContext(c *gin.Context, actor domain.Actor) {
	c.Set(ActorKey, actor)
}

// GetActorFromContext retrieves the identified actor from the Gin context.
// The second return is false when no actor was established.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	val, exists := c.Get(ActorKey)
	if !exists {
		return domain.Actor{}, false
	}
	actor, ok := val.(domain.Actor)
	if !ok {
		return domain.Actor{}, false
	}
	return actor, true
}

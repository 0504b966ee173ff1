package middleware

import "github.com/gin-gonic/gin"

// actorHeader carries the acting user's identifier, supplied by the fronting
// layer that owns authentication. Authentication itself is not this service's
// concern; the value is recorded verbatim into audit fields.
const actorHeader = "X-Actor-ID"

// defaultActor is used when the fronting layer supplies no actor.
const defaultActor = "system"

// GetActorFromContext returns the acting user identifier for the request.
func GetActorFromContext(c *gin.Context) string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return actor
	}
	return defaultActor
}

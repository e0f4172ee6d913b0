package middleware

import (
	"strconv"
	"strings"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID     = "X-User-ID"
	HeaderUserName   = "X-User-Name"
	HeaderUserGroups = "X-User-Groups"

	actorKey = "actor"
)

// Actor reads the caller identity forwarded by the gateway. The user id may
// also come from the "user" query parameter for WebSocket upgrades, which
// cannot carry custom headers from a browser.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := domain.Actor{Name: strings.TrimSpace(c.GetHeader(HeaderUserName))}

		rawID := c.GetHeader(HeaderUserID)
		if rawID == "" {
			rawID = c.Query("user")
		}
		if id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64); err == nil && id > 0 {
			actor.ID = id
		}

		for _, g := range strings.Split(c.GetHeader(HeaderUserGroups), ",") {
			if g = strings.TrimSpace(g); g != "" {
				actor.Groups = append(actor.Groups, g)
			}
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Actor, or the zero actor
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
)

const identityKey = "identity"

// Identity is the authenticated caller, resolved once per request by the
// auth middleware.
type Identity struct {
	User *database.User
}

// Actor converts the identity into an audit actor.
func (id *Identity) Actor() audit.Actor {
	return audit.Actor{ID: &id.User.ID, Name: id.User.Name}
}

// Scope derives the caller's visibility. Elevated roles see everything;
// local managers and regular users are limited to their assigned cities.
func (id *Identity) Scope() database.Scope {
	if id.User.Role.Elevated() {
		return database.Scope{All: true, UserID: id.User.ID}
	}
	return database.Scope{CityIDs: id.User.CityIDs(), UserID: id.User.ID}
}

// FromContext returns the identity set by the auth middleware, or nil.
func FromContext(c *gin.Context) *Identity {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	id, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return id
}

func setIdentity(c *gin.Context, id *Identity) {
	c.Set(identityKey, id)
}

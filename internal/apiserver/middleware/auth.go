package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/auth/jwt"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
)

// Auth validates the bearer token, loads the subject and stores the
// resulting identity on the context. Every rejection is audited on the
// access module before the 401 goes out.
func Auth(jwtService *jwt.Service, db database.Database, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, ok := bearerToken(c)
		if !ok {
			recorder.Record(ctx, audit.Actor{}, cnst.ActionAuthFailed, cnst.ModuleAccess, "missing bearer token")
			abortWith(c, i18n.ErrorTokenMissing)
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				actor := audit.Actor{}
				if expired, perr := jwtService.ParseExpired(token); perr == nil {
					actor = audit.Actor{ID: &expired.UserID, Name: expired.Name}
				}
				recorder.Record(ctx, actor, cnst.ActionAuthExpired, cnst.ModuleAccess, "expired token")
				abortWith(c, i18n.ErrorTokenExpired)
			default:
				recorder.Record(ctx, audit.Actor{}, cnst.ActionAuthInvalid, cnst.ModuleAccess, "invalid token")
				abortWith(c, i18n.ErrorTokenInvalid)
			}
			return
		}

		user, err := db.GetUserByID(ctx, claims.UserID)
		if err != nil {
			actor := audit.Actor{ID: &claims.UserID, Name: claims.Name}
			if database.IsNotFound(err) {
				recorder.Record(ctx, actor, cnst.ActionAuthError, cnst.ModuleAccess,
					fmt.Sprintf("token subject %s not found", claims.UserID))
				abortWith(c, i18n.ErrorTokenInvalid)
				return
			}
			recorder.Record(ctx, actor, cnst.ActionAuthError, cnst.ModuleAccess,
				fmt.Sprintf("token subject %s not resolved", claims.UserID))
			abortWith(c, i18n.ErrInternalServer)
			return
		}

		setIdentity(c, &Identity{User: user})
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
// Denials are audited with the caller and the path that was attempted.
func RequireRoles(recorder *audit.Recorder, roles ...database.Role) gin.HandlerFunc {
	allowed := make(map[database.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		id := FromContext(c)
		if id == nil {
			abortWith(c, i18n.ErrorTokenMissing)
			return
		}
		if _, ok := allowed[id.User.Role]; !ok {
			recorder.Record(c.Request.Context(), id.Actor(), cnst.ActionAuthDenied, cnst.ModuleAccess,
				fmt.Sprintf("role %s denied on %s", id.User.Role, c.FullPath()))
			abortWith(c, i18n.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortWith(c *gin.Context, err error) {
	i18n.RespondWithError(c, err)
	c.Abort()
}

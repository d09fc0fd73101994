package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/middleware"
	"github.com/dadosqualitativos/portal-api/internal/auth/jwt"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
	"github.com/dadosqualitativos/portal-api/internal/mail"
)

// Handler carries the collaborators shared by every route handler.
type Handler struct {
	db         database.Database
	jwtService *jwt.Service
	recorder   *audit.Recorder
	mail       mail.Sender
	logger     *zap.Logger
}

// New creates the route handler set. mailSender may be nil, which
// disables the password recovery flow.
func New(db database.Database, jwtService *jwt.Service, recorder *audit.Recorder, mailSender mail.Sender, logger *zap.Logger) *Handler {
	return &Handler{
		db:         db,
		jwtService: jwtService,
		recorder:   recorder,
		mail:       mailSender,
		logger:     logger.Named("handler"),
	}
}

// identity returns the authenticated caller. The auth middleware
// guarantees it on protected routes; a miss here is a wiring bug.
func (h *Handler) identity(c *gin.Context) (*middleware.Identity, bool) {
	id := middleware.FromContext(c)
	if id == nil {
		i18n.RespondWithError(c, i18n.ErrorTokenMissing)
		return nil, false
	}
	return id, true
}

// denyElevated enforces the elevation protection rule: a global manager
// may not manage an elevated account. Violations get their own derived
// "-failed" audit entry, distinct from the plain role denial.
func (h *Handler) denyElevated(c *gin.Context, id *middleware.Identity, target database.Role, action cnst.Action, detail string) bool {
	if id.User.Role.CanManage(target) {
		return false
	}
	h.recorder.Record(c.Request.Context(), id.Actor(), action.Failed(), cnst.ModuleUsers,
		fmt.Sprintf("%s blocked: target role %s is elevated", detail, target))
	i18n.RespondWithError(c, i18n.ErrorElevatedAccount)
	return true
}

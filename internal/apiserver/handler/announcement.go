package handler

import (
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/middleware"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
)

// ListAnnouncements lists the announcements visible to the caller: the
// ones of their cities, the public ones, and their own.
func (h *Handler) ListAnnouncements(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	announcements, err := h.db.ListAnnouncements(c.Request.Context(), id.Scope())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	i18n.Success(i18n.SuccessAnnouncementList).WithPayload(gin.H{"announcements": announcements}).Send(c)
}

// GetAnnouncement returns one announcement, applying the same visibility
// rule as the listing.
func (h *Handler) GetAnnouncement(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	a, err := h.db.GetAnnouncementByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementNotFound)
		return
	}
	if !visibleTo(id, a) {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementForbidden)
		return
	}
	i18n.Success(i18n.SuccessAnnouncementList).WithPayload(gin.H{"announcement": a}).Send(c)
}

// CreateAnnouncement creates an announcement owned by the caller.
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementRequiredFields)
		return
	}
	ctx := c.Request.Context()

	if req.CityID != "" {
		if _, err := h.db.GetCityByID(ctx, req.CityID); err != nil {
			i18n.RespondWithError(c, i18n.ErrorCityNotFound)
			return
		}
	} else if !req.IsPublic {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementRequiredFields)
		return
	}

	a := &database.Announcement{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Message:    req.Message,
		Background: req.Background,
		TextColor:  req.TextColor,
		Icon:       req.Icon,
		Date:       req.Date,
		IsPublic:   req.IsPublic,
		CityID:     req.CityID,
		CreatedBy:  id.User.ID,
	}
	if err := h.db.CreateAnnouncement(ctx, a); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionCreate, cnst.ModuleAnnouncements,
		fmt.Sprintf("created announcement %s", a.Title))
	i18n.Created(i18n.SuccessAnnouncementCreated).WithPayload(gin.H{"announcement": a}).Send(c)
}

// UpdateAnnouncement updates an announcement. Only the creator or an
// administrator may change one.
func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementRequiredFields)
		return
	}
	ctx := c.Request.Context()

	a, err := h.db.GetAnnouncementByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementNotFound)
		return
	}
	if !canMutateAnnouncement(id, a) {
		h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate.Failed(), cnst.ModuleAnnouncements,
			fmt.Sprintf("update of announcement %s denied: not creator", a.ID))
		i18n.RespondWithError(c, i18n.ErrorAnnouncementForbidden)
		return
	}
	if req.CityID != "" {
		if _, err := h.db.GetCityByID(ctx, req.CityID); err != nil {
			i18n.RespondWithError(c, i18n.ErrorCityNotFound)
			return
		}
	} else if !req.IsPublic {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementRequiredFields)
		return
	}

	a.Title = req.Title
	a.Message = req.Message
	a.Background = req.Background
	a.TextColor = req.TextColor
	a.Icon = req.Icon
	a.Date = req.Date
	a.IsPublic = req.IsPublic
	a.CityID = req.CityID
	if err := h.db.UpdateAnnouncement(ctx, a); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleAnnouncements,
		fmt.Sprintf("updated announcement %s", a.Title))
	i18n.Success(i18n.SuccessAnnouncementUpdated).WithPayload(gin.H{"announcement": a}).Send(c)
}

// DeleteAnnouncement removes an announcement. Only the creator or an
// administrator may delete one.
func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	a, err := h.db.GetAnnouncementByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorAnnouncementNotFound)
		return
	}
	if !canMutateAnnouncement(id, a) {
		h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete.Failed(), cnst.ModuleAnnouncements,
			fmt.Sprintf("delete of announcement %s denied: not creator", a.ID))
		i18n.RespondWithError(c, i18n.ErrorAnnouncementForbidden)
		return
	}

	if err := h.db.DeleteAnnouncement(ctx, a.ID); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleAnnouncements,
		fmt.Sprintf("deleted announcement %s", a.Title))
	i18n.Success(i18n.SuccessAnnouncementDeleted).Send(c)
}

func visibleTo(id *middleware.Identity, a *database.Announcement) bool {
	scope := id.Scope()
	if scope.All || a.IsPublic || a.CreatedBy == id.User.ID {
		return true
	}
	return a.CityID != "" && slices.Contains(scope.CityIDs, a.CityID)
}

func canMutateAnnouncement(id *middleware.Identity, a *database.Announcement) bool {
	return id.User.Role == database.RoleAdministrator || a.CreatedBy == id.User.ID
}

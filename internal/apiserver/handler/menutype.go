package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
)

// ListMenuTypes lists every menu type. Menu types are not city-scoped.
func (h *Handler) ListMenuTypes(c *gin.Context) {
	types, err := h.db.ListMenuTypes(c.Request.Context())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	i18n.Success(i18n.SuccessMenuTypeList).WithPayload(gin.H{"menuTypes": types}).Send(c)
}

// GetMenuType returns one menu type.
func (h *Handler) GetMenuType(c *gin.Context) {
	mt, err := h.db.GetMenuTypeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNotFound)
		return
	}
	i18n.Success(i18n.SuccessMenuTypeList).WithPayload(gin.H{"menuType": mt}).Send(c)
}

// CreateMenuType creates a menu type. Administrator only.
func (h *Handler) CreateMenuType(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.MenuTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNameRequired)
		return
	}
	ctx := c.Request.Context()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNameRequired)
		return
	}

	mt := &database.MenuType{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
	}
	if err := h.db.CreateMenuType(ctx, mt); err != nil {
		if database.IsDuplicate(err) {
			i18n.RespondWithError(c, i18n.ErrorMenuTypeNameExists)
			return
		}
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionCreate, cnst.ModuleMenuTypes,
		fmt.Sprintf("created menu type %s", mt.Name))
	i18n.Created(i18n.SuccessMenuTypeCreated).WithPayload(gin.H{"menuType": mt}).Send(c)
}

// UpdateMenuType updates a menu type. Administrator only.
func (h *Handler) UpdateMenuType(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.MenuTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNameRequired)
		return
	}
	ctx := c.Request.Context()

	mt, err := h.db.GetMenuTypeByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNotFound)
		return
	}

	mt.Name = strings.TrimSpace(req.Name)
	mt.Description = req.Description
	if err := h.db.UpdateMenuType(ctx, mt); err != nil {
		if database.IsDuplicate(err) {
			i18n.RespondWithError(c, i18n.ErrorMenuTypeNameExists)
			return
		}
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleMenuTypes,
		fmt.Sprintf("updated menu type %s", mt.Name))
	i18n.Success(i18n.SuccessMenuTypeUpdated).WithPayload(gin.H{"menuType": mt}).Send(c)
}

// DeleteMenuType removes a menu type. Administrator only.
func (h *Handler) DeleteMenuType(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	mt, err := h.db.GetMenuTypeByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNotFound)
		return
	}

	if err := h.db.DeleteMenuType(ctx, mt.ID); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleMenuTypes,
		fmt.Sprintf("deleted menu type %s", mt.Name))
	i18n.Success(i18n.SuccessMenuTypeDeleted).Send(c)
}

package handler

import (
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
)

// ListMenus lists the menu items visible to the caller.
func (h *Handler) ListMenus(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	menus, err := h.db.ListMenus(c.Request.Context(), id.Scope())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	i18n.Success(i18n.SuccessMenuList).WithPayload(gin.H{"menus": menus}).Send(c)
}

// GetMenu returns one menu item. Membership is re-checked after the
// fetch: a scoped caller asking for a menu outside their cities gets 403,
// not 404.
func (h *Handler) GetMenu(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	menu, err := h.db.GetMenuByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuNotFound)
		return
	}

	scope := id.Scope()
	if !scope.All && !slices.Contains(scope.CityIDs, menu.CityID) {
		h.recorder.Record(ctx, id.Actor(), cnst.ActionAuthDenied, cnst.ModuleMenus,
			fmt.Sprintf("menu %s is outside the caller's cities", menu.ID))
		i18n.RespondWithError(c, i18n.ErrorCityForbidden)
		return
	}

	i18n.Success(i18n.SuccessMenuInfo).WithPayload(gin.H{"menu": menu}).Send(c)
}

// CreateMenu creates a menu item. Administrator only.
func (h *Handler) CreateMenu(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuRequiredFields)
		return
	}
	ctx := c.Request.Context()

	if req.Link == "" {
		i18n.RespondWithError(c, i18n.ErrorMenuRequiredFields)
		return
	}
	if _, err := h.db.GetCityByID(ctx, req.CityID); err != nil {
		i18n.RespondWithError(c, i18n.ErrorCityNotFound)
		return
	}
	if _, err := h.db.GetMenuTypeByID(ctx, req.TypeID); err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNotFound)
		return
	}

	menu := &database.Menu{
		ID:     uuid.NewString(),
		CityID: req.CityID,
		TypeID: req.TypeID,
		Item:   req.Item,
		Title:  req.Title,
		Text:   req.Text,
		Link:   req.Link,
	}
	if err := h.db.CreateMenu(ctx, menu); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionCreate, cnst.ModuleMenus,
		fmt.Sprintf("created menu %s", menu.Item))
	i18n.Created(i18n.SuccessMenuCreated).WithPayload(gin.H{"menu": menu}).Send(c)
}

// UpdateMenu updates a menu item. Administrator only.
func (h *Handler) UpdateMenu(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuRequiredFields)
		return
	}
	ctx := c.Request.Context()

	menu, err := h.db.GetMenuByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuNotFound)
		return
	}
	if _, err := h.db.GetCityByID(ctx, req.CityID); err != nil {
		i18n.RespondWithError(c, i18n.ErrorCityNotFound)
		return
	}
	if _, err := h.db.GetMenuTypeByID(ctx, req.TypeID); err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuTypeNotFound)
		return
	}

	menu.CityID = req.CityID
	menu.TypeID = req.TypeID
	menu.Item = req.Item
	menu.Title = req.Title
	menu.Text = req.Text
	menu.Link = req.Link
	menu.City = nil
	menu.Type = nil
	if err := h.db.UpdateMenu(ctx, menu); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleMenus,
		fmt.Sprintf("updated menu %s", menu.Item))
	i18n.Success(i18n.SuccessMenuUpdated).WithPayload(gin.H{"menu": menu}).Send(c)
}

// DeleteMenu removes a menu item. Administrator only.
func (h *Handler) DeleteMenu(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	menu, err := h.db.GetMenuByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorMenuNotFound)
		return
	}

	if err := h.db.DeleteMenu(ctx, menu.ID); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleMenus,
		fmt.Sprintf("deleted menu %s", menu.Item))
	i18n.Success(i18n.SuccessMenuDeleted).Send(c)
}

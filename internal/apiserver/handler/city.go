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

// PublicCities lists every city without authentication, for the
// registration form.
func (h *Handler) PublicCities(c *gin.Context) {
	cities, err := h.db.ListCities(c.Request.Context(), database.Scope{All: true})
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	i18n.Success(i18n.SuccessCityList).WithPayload(gin.H{"cities": cities}).Send(c)
}

// ListCities lists the cities visible to the caller.
func (h *Handler) ListCities(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	cities, err := h.db.ListCities(c.Request.Context(), id.Scope())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	i18n.Success(i18n.SuccessCityList).WithPayload(gin.H{"cities": cities}).Send(c)
}

// CreateCity creates a city. Administrator only.
func (h *Handler) CreateCity(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorCityNameRequired)
		return
	}
	ctx := c.Request.Context()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		i18n.RespondWithError(c, i18n.ErrorCityNameRequired)
		return
	}

	city := &database.City{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
	}
	if err := h.db.CreateCity(ctx, city); err != nil {
		if database.IsDuplicate(err) {
			i18n.RespondWithError(c, i18n.ErrorCityNameExists)
			return
		}
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionCreate, cnst.ModuleCities,
		fmt.Sprintf("created city %s", city.Name))
	i18n.Created(i18n.SuccessCityCreated).WithPayload(gin.H{"city": city}).Send(c)
}

// UpdateCity updates a city. Administrator only.
func (h *Handler) UpdateCity(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorCityNameRequired)
		return
	}
	ctx := c.Request.Context()

	city, err := h.db.GetCityByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorCityNotFound)
		return
	}

	city.Name = strings.TrimSpace(req.Name)
	city.Description = req.Description
	if err := h.db.UpdateCity(ctx, city); err != nil {
		if database.IsDuplicate(err) {
			i18n.RespondWithError(c, i18n.ErrorCityNameExists)
			return
		}
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleCities,
		fmt.Sprintf("updated city %s", city.Name))
	i18n.Success(i18n.SuccessCityUpdated).WithPayload(gin.H{"city": city}).Send(c)
}

// DeleteCity removes a city. Administrator only.
func (h *Handler) DeleteCity(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	city, err := h.db.GetCityByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorCityNotFound)
		return
	}

	if err := h.db.DeleteCity(ctx, city.ID); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleCities,
		fmt.Sprintf("deleted city %s", city.Name))
	i18n.Success(i18n.SuccessCityDeleted).Send(c)
}

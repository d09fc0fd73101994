package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
	"github.com/dadosqualitativos/portal-api/pkg/utils"
)

// ListUsers returns every account with its city assignments.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.db.ListUsers(c.Request.Context())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	i18n.Success(i18n.SuccessUserList).WithPayload(gin.H{"users": users}).Send(c)
}

// CreateUser creates an account on behalf of a manager. Creating an
// elevated account requires the administrator role.
func (h *Handler) CreateUser(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()

	role := database.RoleUser
	if req.Role != "" {
		role = database.Role(req.Role)
		if !role.Valid() {
			i18n.RespondWithError(c, i18n.ErrorInvalidRole)
			return
		}
	}
	if h.denyElevated(c, id, role, cnst.ActionCreate, fmt.Sprintf("create user %s", req.Email)) {
		return
	}

	email := utils.NormalizeEmail(req.Email)
	cpf := utils.NormalizeCPF(req.CPF)
	if !strings.Contains(email, "@") {
		i18n.RespondWithError(c, i18n.ErrorInvalidEmail)
		return
	}
	if !utils.ValidCPF(cpf) {
		i18n.RespondWithError(c, i18n.ErrorInvalidCPF)
		return
	}

	if conflict, err := h.db.FindConflictingUser(ctx, email, cpf, ""); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	} else if conflict != nil {
		if conflict.Email == email {
			i18n.RespondWithError(c, i18n.ErrorEmailExists)
		} else {
			i18n.RespondWithError(c, i18n.ErrorCPFExists)
		}
		return
	}

	cities, ok := h.resolveCities(c, req.CityIDs)
	if !ok {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	user := &database.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Email:    email,
		CPF:      cpf,
		Password: string(hashed),
		Role:     role,
		Cities:   cities,
		Address:  req.Address,
		Phone:    req.Phone,
		Photo:    req.Photo,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionCreate, cnst.ModuleUsers,
		fmt.Sprintf("created user %s with role %s", user.Email, user.Role))
	i18n.Created(i18n.SuccessUserCreated).WithPayload(gin.H{"user": user}).Send(c)
}

// UpdateUser updates another account. The elevation rule is checked
// against both the target's current role and the requested one.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()

	user, err := h.db.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}
	if h.denyElevated(c, id, user.Role, cnst.ActionUpdate, fmt.Sprintf("update user %s", user.Email)) {
		return
	}

	if req.Role != nil {
		role := database.Role(*req.Role)
		if !role.Valid() {
			i18n.RespondWithError(c, i18n.ErrorInvalidRole)
			return
		}
		if h.denyElevated(c, id, role, cnst.ActionUpdate, fmt.Sprintf("promote user %s", user.Email)) {
			return
		}
		user.Role = role
	}

	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		if !strings.Contains(email, "@") {
			i18n.RespondWithError(c, i18n.ErrorInvalidEmail)
			return
		}
		user.Email = email
	}
	if req.CPF != nil {
		cpf := utils.NormalizeCPF(*req.CPF)
		if !utils.ValidCPF(cpf) {
			i18n.RespondWithError(c, i18n.ErrorInvalidCPF)
			return
		}
		user.CPF = cpf
	}
	if req.Email != nil || req.CPF != nil {
		if conflict, err := h.db.FindConflictingUser(ctx, user.Email, user.CPF, user.ID); err != nil {
			i18n.RespondWithError(c, i18n.ErrInternalServer)
			return
		} else if conflict != nil {
			if conflict.Email == user.Email {
				i18n.RespondWithError(c, i18n.ErrorEmailExists)
			} else {
				i18n.RespondWithError(c, i18n.ErrorCPFExists)
			}
			return
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Photo != nil {
		user.Photo = *req.Photo
	}

	if err := h.db.Transaction(ctx, func(ctx context.Context) error {
		if err := h.db.UpdateUser(ctx, user); err != nil {
			return err
		}
		if req.CityIDs != nil {
			return h.db.ReplaceUserCities(ctx, user.ID, *req.CityIDs)
		}
		return nil
	}); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	updated, err := h.db.GetUserByID(ctx, user.ID)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleUsers,
		fmt.Sprintf("updated user %s", updated.Email))
	i18n.Success(i18n.SuccessUserUpdated).WithPayload(gin.H{"user": updated}).Send(c)
}

// DeleteUser removes another account, elevation rule applying.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.db.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}
	if h.denyElevated(c, id, user.Role, cnst.ActionDelete, fmt.Sprintf("delete user %s", user.Email)) {
		return
	}

	if err := h.db.DeleteUser(ctx, user.ID); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleUsers,
		fmt.Sprintf("deleted user %s", user.Email))
	i18n.Success(i18n.SuccessUserDeleted).Send(c)
}

// ResetUserPassword sets a new password for another account, elevation
// rule applying.
func (h *Handler) ResetUserPassword(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()

	user, err := h.db.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}
	if h.denyElevated(c, id, user.Role, cnst.ActionResetPassword, fmt.Sprintf("reset password of %s", user.Email)) {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	user.Password = string(hashed)
	user.ResetToken = ""
	user.ResetTokenExpires = nil
	if err := h.db.UpdateUser(ctx, user); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionResetPassword, cnst.ModuleUsers,
		fmt.Sprintf("reset password of %s", user.Email))
	i18n.Success(i18n.SuccessPasswordReset).Send(c)
}

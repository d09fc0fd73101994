package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
	"github.com/dadosqualitativos/portal-api/pkg/utils"
)

const resetTokenTTL = time.Hour

// Register handles self-service registration. New accounts always get
// the regular user role; a token is issued right away.
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()

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
		Role:     database.RoleUser,
		Cities:   cities,
		Address:  req.Address,
		Phone:    req.Phone,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		if database.IsDuplicate(err) {
			i18n.RespondWithError(c, i18n.ErrorEmailExists)
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Name, string(user.Role), user.CityIDs())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
		cnst.ActionCreate, cnst.ModuleUsers, fmt.Sprintf("registered account %s", user.Email))

	i18n.Created(i18n.SuccessRegister).WithPayload(gin.H{"token": token, "user": user}).Send(c)
}

// Login authenticates with an email or CPF identifier plus password.
// Every branch leaves a distinct audit entry.
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()

	identifier := req.Identifier
	if utils.LooksLikeCPF(identifier) {
		identifier = utils.NormalizeCPF(identifier)
	} else {
		identifier = utils.NormalizeEmail(identifier)
	}

	user, err := h.db.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		h.recorder.Record(ctx, audit.Actor{}, cnst.ActionLoginFailed, cnst.ModuleAccess,
			fmt.Sprintf("login attempt for unknown identifier %s", identifier))
		i18n.RespondWithError(c, i18n.ErrorInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
			cnst.ActionLoginFailed, cnst.ModuleAccess,
			fmt.Sprintf("incorrect password for %s", user.Email))
		i18n.RespondWithError(c, i18n.ErrorInvalidCredentials)
		return
	}

	// A stored role outside the vocabulary rejects even after the
	// password matched.
	if !user.Role.Valid() {
		h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
			cnst.ActionLoginError, cnst.ModuleAccess,
			fmt.Sprintf("account %s holds invalid role %q", user.Email, user.Role))
		i18n.RespondWithError(c, i18n.ErrorInvalidRole)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Name, string(user.Role), user.CityIDs())
	if err != nil {
		h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
			cnst.ActionLoginError, cnst.ModuleAccess, "failed to issue token")
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
		cnst.ActionLogin, cnst.ModuleAccess, fmt.Sprintf("login for %s", user.Email))

	i18n.Success(i18n.SuccessLogin).WithPayload(gin.H{"token": token, "user": user}).Send(c)
}

// Profile returns the authenticated account.
func (h *Handler) Profile(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	i18n.Success(i18n.SuccessUserInfo).WithPayload(gin.H{"user": id.User}).Send(c)
}

// UpdateMe lets the caller change their own contact fields. Role and
// city assignments are not self-serviceable.
func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()
	user := id.User

	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		if !strings.Contains(email, "@") {
			i18n.RespondWithError(c, i18n.ErrorInvalidEmail)
			return
		}
		if conflict, err := h.db.FindConflictingUser(ctx, email, "", user.ID); err != nil {
			i18n.RespondWithError(c, i18n.ErrInternalServer)
			return
		} else if conflict != nil {
			i18n.RespondWithError(c, i18n.ErrorEmailExists)
			return
		}
		user.Email = email
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

	if err := h.db.UpdateUser(ctx, user); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleUsers, "updated own profile")
	i18n.Success(i18n.SuccessUserUpdated).WithPayload(gin.H{"user": user}).Send(c)
}

// DeleteMe removes the caller's own account.
func (h *Handler) DeleteMe(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.db.DeleteUser(ctx, id.User.ID); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleUsers,
		fmt.Sprintf("deleted own account %s", id.User.Email))
	i18n.Success(i18n.SuccessUserDeleted).Send(c)
}

// ChangePassword verifies the current password before setting a new one.
func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()
	user := id.User

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate.Failed(), cnst.ModuleUsers,
			"password change rejected: wrong current password")
		i18n.RespondWithError(c, i18n.ErrorInvalidOldPassword)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	user.Password = string(hashed)
	if err := h.db.UpdateUser(ctx, user); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionUpdate, cnst.ModuleUsers, "changed own password")
	i18n.Success(i18n.SuccessPasswordChanged).Send(c)
}

// RecoverPassword mails a time-limited reset link. Answers 503 when
// outbound mail is not configured.
func (h *Handler) RecoverPassword(c *gin.Context) {
	if h.mail == nil {
		i18n.RespondWithError(c, i18n.ErrorMailUnavailable)
		return
	}
	var req dto.RecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}
	ctx := c.Request.Context()

	email := utils.NormalizeEmail(req.Email)
	user, err := h.db.GetUserByIdentifier(ctx, email)
	if err != nil {
		h.recorder.Record(ctx, audit.Actor{}, cnst.ActionRecoverPassword.Failed(), cnst.ModuleAccess,
			fmt.Sprintf("recovery requested for unknown email %s", email))
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(resetTokenTTL)
	user.ResetToken = token
	user.ResetTokenExpires = &expires
	if err := h.db.UpdateUser(ctx, user); err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	if err := h.mail.SendPasswordReset(ctx, user.Email, user.Name, token); err != nil {
		h.logger.Error("failed to send recovery mail", zap.Error(err))
		h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
			cnst.ActionRecoverPassword.Errored(), cnst.ModuleAccess, "recovery mail delivery failed")
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
		cnst.ActionRecoverPassword, cnst.ModuleAccess,
		fmt.Sprintf("recovery mail sent to %s", user.Email))
	i18n.Success(i18n.SuccessRecoveryMailSent).Send(c)
}

// ResetPassword completes a recovery using the mailed token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		i18n.RespondWithError(c, i18n.ErrorResetTokenInvalid)
		return
	}
	ctx := c.Request.Context()

	user, err := h.db.GetUserByResetToken(ctx, req.Token)
	if err != nil || user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		h.recorder.Record(ctx, audit.Actor{}, cnst.ActionResetPassword.Failed(), cnst.ModuleAccess,
			"reset attempted with invalid or expired token")
		i18n.RespondWithError(c, i18n.ErrorResetTokenInvalid)
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

	h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
		cnst.ActionResetPassword, cnst.ModuleAccess,
		fmt.Sprintf("password reset via recovery token for %s", user.Email))
	i18n.Success(i18n.SuccessPasswordReset).Send(c)
}

// RefreshToken exchanges a still-verifiable (possibly expired) token for
// a fresh one, re-resolving the subject.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRefreshTokenRequired)
		return
	}
	ctx := c.Request.Context()

	claims, err := h.jwtService.ParseExpired(req.Token)
	if err != nil {
		h.recorder.Record(ctx, audit.Actor{}, cnst.ActionAuthInvalid, cnst.ModuleAccess,
			"refresh attempted with unverifiable token")
		i18n.RespondWithError(c, i18n.ErrorTokenInvalid)
		return
	}

	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		h.recorder.Record(ctx, audit.Actor{ID: &claims.UserID, Name: claims.Name},
			cnst.ActionAuthError, cnst.ModuleAccess, "refresh subject no longer exists")
		i18n.RespondWithError(c, i18n.ErrorTokenInvalid)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Name, string(user.Role), user.CityIDs())
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, audit.Actor{ID: &user.ID, Name: user.Name},
		cnst.ActionRefreshToken, cnst.ModuleAccess, fmt.Sprintf("token refreshed for %s", user.Email))
	i18n.Success(i18n.SuccessTokenRefreshed).WithPayload(gin.H{"token": token}).Send(c)
}

// resolveCities loads and validates the referenced cities.
func (h *Handler) resolveCities(c *gin.Context, cityIDs []string) ([]database.City, bool) {
	cities := make([]database.City, 0, len(cityIDs))
	for _, cityID := range cityIDs {
		city, err := h.db.GetCityByID(c.Request.Context(), cityID)
		if err != nil {
			if database.IsNotFound(err) {
				i18n.Error(i18n.ErrorCityNotFound).WithParam("ID", cityID).Send(c)
			} else {
				i18n.RespondWithError(c, i18n.ErrInternalServer)
			}
			return nil, false
		}
		cities = append(cities, *city)
	}
	return cities, true
}

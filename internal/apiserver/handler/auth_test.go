package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
)

func TestRegisterThenLoginWithCPF(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     "Maria Silva",
		Email:    " Maria.Silva@Example.com ",
		CPF:      "123.456.789-01",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "maria.silva@example.com", user["email"])
	assert.Equal(t, "12345678901", user["cpf"])
	// Self-registration never grants anything above the regular role.
	assert.Equal(t, "user", user["role"])

	entry := f.lastAudit(t)
	require.NotNil(t, entry)
	assert.Equal(t, cnst.ActionCreate, entry.Action)
	assert.Equal(t, cnst.ModuleUsers, entry.Module)
	assert.Contains(t, entry.Details, "maria.silva@example.com")

	// The bare CPF digits work as a login identifier.
	w = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Identifier: "123.456.789-01",
		Password:   "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	token := body["token"].(string)

	claims, err := f.jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "Maria Silva", claims.Name)

	assert.Equal(t, cnst.ActionLogin, f.lastAudit(t).Action)
}

func TestRegisterConflicts(t *testing.T) {
	f := newFixture(t)
	existing := f.createUser(t, "taken", database.RoleUser)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     "Other",
		Email:    existing.Email,
		CPF:      "98765432100",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     "Other",
		Email:    "other@example.com",
		CPF:      existing.CPF,
		Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ErrorCPFExists", decode(t, w)["message"])

	w = f.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     "Other",
		Email:    "not-an-email",
		CPF:      "98765432100",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     "Other",
		Email:    "other@example.com",
		CPF:      "123",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ErrorInvalidCPF", decode(t, w)["message"])
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "joao", database.RoleUser)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Identifier: user.Email,
		Password:   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	entry := f.lastAudit(t)
	require.NotNil(t, entry)
	assert.Equal(t, cnst.ActionLoginFailed, entry.Action)
	assert.Equal(t, cnst.ModuleAccess, entry.Module)
	assert.Contains(t, entry.Details, "incorrect password")
	assert.Contains(t, entry.Details, user.Email)
}

func TestLoginUnknownIdentifier(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Identifier: "ghost@example.com",
		Password:   "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	entry := f.lastAudit(t)
	require.NotNil(t, entry)
	assert.Equal(t, cnst.ActionLoginFailed, entry.Action)
	// No resolved actor on an unknown identifier.
	assert.Nil(t, entry.ActorID)
	assert.Equal(t, cnst.UnknownActor, entry.ActorName)
}

func TestLoginInvalidStoredRole(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "broken", database.Role("superuser"))

	w := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Identifier: user.Email,
		Password:   testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ErrorInvalidRole", decode(t, w)["message"])
	assert.Equal(t, cnst.ActionLoginError, f.lastAudit(t).Action)
}

func TestProfileAndUpdateMe(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "pedro", database.RoleUser)
	token := f.token(t, user)

	w := f.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, user.Email, got["email"])

	name := "Pedro Alves"
	phone := "+55 11 98888-0000"
	w = f.do(t, http.MethodPut, "/api/auth/me", token, dto.UpdateProfileRequest{
		Name:  &name,
		Phone: &phone,
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := f.db.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, phone, updated.Phone)
	// Untouched fields keep their values.
	assert.Equal(t, user.Email, updated.Email)
}

func TestUpdateMeEmailConflict(t *testing.T) {
	f := newFixture(t)
	other := f.createUser(t, "holder", database.RoleUser)
	user := f.createUser(t, "mover", database.RoleUser)

	w := f.do(t, http.MethodPut, "/api/auth/me", f.token(t, user), dto.UpdateProfileRequest{
		Email: &other.Email,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteMe(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "leaver", database.RoleUser)

	w := f.do(t, http.MethodDelete, "/api/auth/me", f.token(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.db.GetUserByID(context.Background(), user.ID)
	assert.True(t, database.IsNotFound(err))

	entry := f.lastAudit(t)
	assert.Equal(t, cnst.ActionDelete, entry.Action)
	assert.Contains(t, entry.Details, user.Email)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "changer", database.RoleUser)
	token := f.token(t, user)

	w := f.do(t, http.MethodPost, "/api/auth/change-password", token, dto.ChangePasswordRequest{
		OldPassword: "not-the-password",
		NewPassword: "brand-new-pass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, cnst.ActionUpdate.Failed(), f.lastAudit(t).Action)

	w = f.do(t, http.MethodPost, "/api/auth/change-password", token, dto.ChangePasswordRequest{
		OldPassword: testPassword,
		NewPassword: "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := f.db.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("brand-new-pass")))
}

func TestRecoverAndResetPassword(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "forgetful", database.RoleUser)

	w := f.do(t, http.MethodPost, "/api/auth/recover-password", "", dto.RecoverPasswordRequest{
		Email: user.Email,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, f.mail.token)
	assert.Equal(t, user.Email, f.mail.to)
	assert.Equal(t, cnst.ActionRecoverPassword, f.lastAudit(t).Action)

	w = f.do(t, http.MethodPost, "/api/auth/reset-password", "", dto.ResetPasswordRequest{
		Token:       f.mail.token,
		NewPassword: "recovered-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := f.db.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("recovered-pass")))
	assert.Empty(t, updated.ResetToken)

	// The token is single use.
	w = f.do(t, http.MethodPost, "/api/auth/reset-password", "", dto.ResetPasswordRequest{
		Token:       f.mail.token,
		NewPassword: "recovered-pass-2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, cnst.ActionResetPassword.Failed(), f.lastAudit(t).Action)
}

func TestRecoverPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/recover-password", "", dto.RecoverPasswordRequest{
		Email: "ghost@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, cnst.ActionRecoverPassword.Failed(), f.lastAudit(t).Action)
}

func TestRecoverPasswordMailDisabled(t *testing.T) {
	f := newFixture(t)
	f.handler.mail = nil

	w := f.do(t, http.MethodPost, "/api/auth/recover-password", "", dto.RecoverPasswordRequest{
		Email: "anyone@example.com",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "ErrorMailUnavailable", decode(t, w)["message"])
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "late", database.RoleUser)

	expired := time.Now().Add(-time.Minute)
	user.ResetToken = "stale-token"
	user.ResetTokenExpires = &expired
	require.NoError(t, f.db.UpdateUser(context.Background(), user))

	w := f.do(t, http.MethodPost, "/api/auth/reset-password", "", dto.ResetPasswordRequest{
		Token:       "stale-token",
		NewPassword: "whatever-new",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ErrorResetTokenInvalid", decode(t, w)["message"])
}

func TestRefreshToken(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "refresher", database.RoleUser)
	token := f.token(t, user)

	w := f.do(t, http.MethodPost, "/api/auth/refresh-token", "", dto.RefreshTokenRequest{Token: token})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode(t, w)["token"].(string)

	claims, err := f.jwt.ValidateToken(fresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, cnst.ActionRefreshToken, f.lastAudit(t).Action)
}

func TestRefreshTokenGarbage(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/refresh-token", "", dto.RefreshTokenRequest{Token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, cnst.ActionAuthInvalid, f.lastAudit(t).Action)
}

func TestRefreshTokenDeletedSubject(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "gone", database.RoleUser)
	token := f.token(t, user)
	require.NoError(t, f.db.DeleteUser(context.Background(), user.ID))

	w := f.do(t, http.MethodPost, "/api/auth/refresh-token", "", dto.RefreshTokenRequest{Token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, cnst.ActionAuthError, f.lastAudit(t).Action)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit/dedup"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/middleware"
	"github.com/dadosqualitativos/portal-api/internal/auth/jwt"
	"github.com/dadosqualitativos/portal-api/internal/common/config"
	"github.com/dadosqualitativos/portal-api/internal/mail"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "secret123"
)

// testHash is a precomputed bcrypt hash of testPassword at minimum cost,
// shared so user seeding stays fast.
var testHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

type fakeMail struct {
	to    string
	token string
	err   error
}

func (f *fakeMail) SendPasswordReset(_ context.Context, to, _, token string) error {
	if f.err != nil {
		return f.err
	}
	f.to = to
	f.token = token
	return nil
}

var _ mail.Sender = (*fakeMail)(nil)

type fixture struct {
	db       database.Database
	jwt      *jwt.Service
	recorder *audit.Recorder
	mail     *fakeMail
	handler  *Handler
	router   *gin.Engine

	cpfSeq int
}

// newFixture builds a handler wired to an in-memory database behind the
// same route table the server registers in production.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(zap.NewNop(), &config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	// A zero window disables dedup so every test request leaves its entry.
	recorder := audit.NewRecorder(db, dedup.NewMemoryStore(0), nil, zap.NewNop())

	sender := &fakeMail{}
	h := New(db, svc, recorder, sender, zap.NewNop())

	router := gin.New()
	api := router.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/recover-password", h.RecoverPassword)
	api.POST("/auth/reset-password", h.ResetPassword)
	api.POST("/auth/refresh-token", h.RefreshToken)
	api.GET("/cities/public", h.PublicCities)

	authed := api.Group("")
	authed.Use(middleware.Auth(svc, db, recorder))
	{
		authed.GET("/auth/profile", h.Profile)
		authed.PUT("/auth/me", h.UpdateMe)
		authed.DELETE("/auth/me", h.DeleteMe)
		authed.POST("/auth/change-password", h.ChangePassword)

		authed.GET("/cities", h.ListCities)
		authed.GET("/menus", h.ListMenus)
		authed.GET("/menus/:id", h.GetMenu)
		authed.GET("/menu-types", h.ListMenuTypes)
		authed.GET("/menu-types/:id", h.GetMenuType)

		authed.GET("/announcements", h.ListAnnouncements)
		authed.GET("/announcements/:id", h.GetAnnouncement)
		authed.POST("/announcements", h.CreateAnnouncement)
		authed.PUT("/announcements/:id", h.UpdateAnnouncement)
		authed.DELETE("/announcements/:id", h.DeleteAnnouncement)

		authed.GET("/logs", h.ListLogs)
		authed.POST("/logs", h.CreateLog)
	}

	managers := authed.Group("")
	managers.Use(middleware.RequireRoles(recorder, database.RoleAdministrator, database.RoleGlobalManager))
	{
		managers.GET("/auth/users", h.ListUsers)
		managers.POST("/auth/create-user", h.CreateUser)
		managers.PUT("/auth/users/:id", h.UpdateUser)
		managers.DELETE("/auth/users/:id", h.DeleteUser)
		managers.POST("/auth/users/:id/reset-password", h.ResetUserPassword)
	}

	admins := authed.Group("")
	admins.Use(middleware.RequireRoles(recorder, database.RoleAdministrator))
	{
		admins.POST("/cities", h.CreateCity)
		admins.PUT("/cities/:id", h.UpdateCity)
		admins.DELETE("/cities/:id", h.DeleteCity)

		admins.POST("/menus", h.CreateMenu)
		admins.PUT("/menus/:id", h.UpdateMenu)
		admins.DELETE("/menus/:id", h.DeleteMenu)

		admins.POST("/menu-types", h.CreateMenuType)
		admins.PUT("/menu-types/:id", h.UpdateMenuType)
		admins.DELETE("/menu-types/:id", h.DeleteMenuType)

		admins.DELETE("/logs/clear-list", h.ClearListLogs)
	}

	return &fixture{
		db:       db,
		jwt:      svc,
		recorder: recorder,
		mail:     sender,
		handler:  h,
		router:   router,
	}
}

func (f *fixture) nextCPF() string {
	f.cpfSeq++
	return fmt.Sprintf("%011d", f.cpfSeq)
}

func (f *fixture) createUser(t *testing.T, name string, role database.Role, cities ...database.City) *database.User {
	t.Helper()
	u := &database.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    name + "@example.com",
		CPF:      f.nextCPF(),
		Password: testHash,
		Role:     role,
		Cities:   cities,
	}
	require.NoError(t, f.db.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) createCity(t *testing.T, name string) *database.City {
	t.Helper()
	city := &database.City{ID: uuid.NewString(), Name: name}
	require.NoError(t, f.db.CreateCity(context.Background(), city))
	return city
}

func (f *fixture) token(t *testing.T, u *database.User) string {
	t.Helper()
	tok, err := f.jwt.GenerateToken(u.ID, u.Name, string(u.Role), u.CityIDs())
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// lastAudit returns the newest audit entry, or nil when the log is empty.
func (f *fixture) lastAudit(t *testing.T) *database.AuditEntry {
	t.Helper()
	entries, _, err := f.db.QueryAuditEntries(context.Background(), database.AuditFilter{PageSize: 1})
	require.NoError(t, err)
	if len(entries) == 0 {
		return nil
	}
	return entries[0]
}

func (f *fixture) auditCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.db.QueryAuditEntries(context.Background(), database.AuditFilter{})
	require.NoError(t, err)
	return total
}

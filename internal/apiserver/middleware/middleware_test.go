package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit/dedup"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/auth/jwt"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	db       database.Database
	jwt      *jwt.Service
	recorder *audit.Recorder
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(zap.NewNop(), &config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	recorder := audit.NewRecorder(db, dedup.NewMemoryStore(time.Millisecond), nil, zap.NewNop())

	return &fixture{
		db:       db,
		jwt:      svc,
		recorder: recorder,
		router:   gin.New(),
	}
}

func (f *fixture) createUser(t *testing.T, name string, role database.Role) *database.User {
	t.Helper()
	u := &database.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    name + "@example.com",
		CPF:      uuid.NewString()[:11],
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, f.db.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) token(t *testing.T, u *database.User) string {
	t.Helper()
	tok, err := f.jwt.GenerateToken(u.ID, u.Name, string(u.Role), u.CityIDs())
	require.NoError(t, err)
	return tok
}

func (f *fixture) lastAudit(t *testing.T) *database.AuditEntry {
	t.Helper()
	entries, _, err := f.db.QueryAuditEntries(context.Background(), database.AuditFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[0]
}

func TestAuth_MissingToken(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/p", Auth(f.jwt, f.db, f.recorder), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	entry := f.lastAudit(t)
	assert.Equal(t, cnst.ActionAuthFailed, entry.Action)
	assert.Equal(t, cnst.ModuleAccess, entry.Module)
	assert.Nil(t, entry.ActorID)
}

func TestAuth_InvalidToken(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/p", Auth(f.jwt, f.db, f.recorder), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, cnst.ActionAuthInvalid, f.lastAudit(t).Action)
}

func TestAuth_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "alice", database.RoleUser)

	shortLived, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: time.Millisecond})
	require.NoError(t, err)
	tok, err := shortLived.GenerateToken(u.ID, u.Name, string(u.Role), nil)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	f.router.GET("/p", Auth(f.jwt, f.db, f.recorder), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	entry := f.lastAudit(t)
	assert.Equal(t, cnst.ActionAuthExpired, entry.Action)
	// The expired token still identifies the actor.
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, u.ID, *entry.ActorID)
}

func TestAuth_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	tok, err := f.jwt.GenerateToken(uuid.NewString(), "ghost", "user", nil)
	require.NoError(t, err)

	f.router.GET("/p", Auth(f.jwt, f.db, f.recorder), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, cnst.ActionAuthError, f.lastAudit(t).Action)
}

// brokenSubjectDB fails every user lookup, standing in for storage trouble.
type brokenSubjectDB struct {
	database.Database
}

func (brokenSubjectDB) GetUserByID(ctx context.Context, id string) (*database.User, error) {
	return nil, errors.New("connection reset")
}

func TestAuth_SubjectLookupFailure(t *testing.T) {
	f := newFixture(t)
	tok, err := f.jwt.GenerateToken(uuid.NewString(), "alice", "user", nil)
	require.NoError(t, err)

	// Storage failures are not authentication failures.
	f.router.GET("/p", Auth(f.jwt, brokenSubjectDB{}, f.recorder), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, cnst.ActionAuthError, f.lastAudit(t).Action)
}

func TestAuth_Success(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "alice", database.RoleAdministrator)

	var got *Identity
	f.router.GET("/p", Auth(f.jwt, f.db, f.recorder), func(c *gin.Context) {
		got = FromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, u))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.User.ID)
	assert.True(t, got.Scope().All)
}

func TestIdentity_ScopeByRole(t *testing.T) {
	admin := &Identity{User: &database.User{ID: "a", Role: database.RoleAdministrator}}
	assert.True(t, admin.Scope().All)

	global := &Identity{User: &database.User{ID: "g", Role: database.RoleGlobalManager}}
	assert.True(t, global.Scope().All)

	local := &Identity{User: &database.User{
		ID:     "l",
		Role:   database.RoleLocalManager,
		Cities: []database.City{{ID: "c-1"}, {ID: "c-2"}},
	}}
	scope := local.Scope()
	assert.False(t, scope.All)
	assert.Equal(t, []string{"c-1", "c-2"}, scope.CityIDs)
	assert.Equal(t, "l", scope.UserID)

	// No cities means an empty visibility set, not everything.
	regular := &Identity{User: &database.User{ID: "u", Role: database.RoleUser}}
	assert.False(t, regular.Scope().All)
	assert.Empty(t, regular.Scope().CityIDs)
}

func TestRequireRoles(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin", database.RoleAdministrator)
	regular := f.createUser(t, "bob", database.RoleUser)

	f.router.GET("/admin",
		Auth(f.jwt, f.db, f.recorder),
		RequireRoles(f.recorder, database.RoleAdministrator, database.RoleGlobalManager),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, admin))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, regular))
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	entry := f.lastAudit(t)
	assert.Equal(t, cnst.ActionAuthDenied, entry.Action)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, regular.ID, *entry.ActorID)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://portal.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// Preflight is answered without hitting the handler.
	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLanguage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Language())
	var got string
	router.GET("/x", func(c *gin.Context) {
		got = c.GetString(cnst.XLang)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(cnst.XLang, "en")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "en", got)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("PORTAL_TEST_HOST", "db.example.com")
	os.Unsetenv("PORTAL_TEST_MISSING")

	in := []byte("host: ${PORTAL_TEST_HOST}\nport: ${PORTAL_TEST_MISSING:5432}\nempty: ${PORTAL_TEST_MISSING:}\n")
	out := string(resolveEnv(in))

	assert.Contains(t, out, "host: db.example.com")
	assert.Contains(t, out, "port: 5432")
	assert.Contains(t, out, "empty: \n")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORTAL_TEST_DB_NAME", "portal_test")

	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	content := `
server:
  port: 8080
  mode: debug
database:
  type: sqlite
  dbname: ${PORTAL_TEST_DB_NAME}
jwt:
  secret_key: test-secret
  duration: 2h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, cfgPath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfgPath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "portal_test", cfg.Database.DBName)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Duration)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSetDefaults(t *testing.T) {
	var cfg APIServerConfig
	cfg.setDefaults()

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "memory", cfg.Audit.Dedup.Type)
	assert.Equal(t, 5*time.Second, cfg.Audit.Dedup.Window)
	assert.Equal(t, "portal", cfg.Metrics.Namespace)
}

func TestDatabaseConfigGetDSN(t *testing.T) {
	pg := DatabaseConfig{Type: "postgres", Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "portal", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@localhost:5432/portal?sslmode=disable", pg.GetDSN())

	my := DatabaseConfig{Type: "mysql", Host: "localhost", Port: 3306, User: "u", Password: "p", DBName: "portal"}
	assert.Equal(t, "u:p@tcp(localhost:3306)/portal?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	lite := DatabaseConfig{Type: "sqlite", DBName: "portal.db"}
	assert.Equal(t, "portal.db", lite.GetDSN())

	unknown := DatabaseConfig{Type: "oracle"}
	assert.Empty(t, unknown.GetDSN())
}

func TestMailConfigEnabled(t *testing.T) {
	assert.False(t, (&MailConfig{}).Enabled())
	assert.False(t, (&MailConfig{Username: "u"}).Enabled())
	assert.True(t, (&MailConfig{Username: "u", Password: "p"}).Enabled())
}

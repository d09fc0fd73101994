package config

import (
	"fmt"
	"time"
)

type (
	// APIServerConfig is the root configuration of the portal API server
	APIServerConfig struct {
		Server   ServerConfig   `yaml:"server"`
		Database DatabaseConfig `yaml:"database"`
		Logger   LoggerConfig   `yaml:"logger"`
		JWT      JWTConfig      `yaml:"jwt"`
		Audit    AuditConfig    `yaml:"audit"`
		Mail     MailConfig     `yaml:"mail"`
		I18n     I18nConfig     `yaml:"i18n"`
		Metrics  MetricsConfig  `yaml:"metrics"`
		Trace    TraceConfig    `yaml:"trace"`
	}

	// ServerConfig configures the HTTP listener
	ServerConfig struct {
		Port           int      `yaml:"port"`
		Mode           string   `yaml:"mode"`            // debug, release, test
		AllowedOrigins []string `yaml:"allowed_origins"` // CORS allow-list
	}

	// DatabaseConfig configures the storage backend
	DatabaseConfig struct {
		Type     string `yaml:"type"`     // postgres, mysql, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 5432 (postgres), 3306 (mysql)
		User     string `yaml:"user"`     // connection user
		Password string `yaml:"password"` // connection password
		DBName   string `yaml:"dbname"`   // database name, or sqlite file path
		SSLMode  string `yaml:"sslmode"`  // disable (postgres only)
	}

	// JWTConfig configures token signing
	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// AuditConfig configures the audit log recorder
	AuditConfig struct {
		Dedup DedupConfig `yaml:"dedup"`
	}

	// DedupConfig configures the duplicate-entry guard
	DedupConfig struct {
		Type   string           `yaml:"type"`   // memory or redis
		Window time.Duration    `yaml:"window"` // suppression window for repeated entries
		Redis  AuditRedisConfig `yaml:"redis"`
	}

	// AuditRedisConfig configures the redis-backed dedup store
	AuditRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// MailConfig configures the optional outbound mail capability.
	// Password recovery is disabled when username or password is empty.
	MailConfig struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		From         string `yaml:"from"`
		ResetBaseURL string `yaml:"reset_base_url"`
	}

	// I18nConfig configures translation loading
	I18nConfig struct {
		Path string `yaml:"path"`
	}

	// MetricsConfig configures the prometheus registry
	MetricsConfig struct {
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// TraceConfig configures the OTLP trace exporter.
	// Tracing is disabled when the endpoint is empty.
	TraceConfig struct {
		Endpoint string `yaml:"endpoint"`
		Insecure bool   `yaml:"insecure"`
	}
)

// Enabled reports whether outbound mail is configured.
func (c *MailConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.Audit.Dedup.Type == "" {
		c.Audit.Dedup.Type = "memory"
	}
	if c.Audit.Dedup.Window <= 0 {
		c.Audit.Dedup.Window = 5 * time.Second
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "portal"
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		// For SQLite, DBName is the file path
		return c.DBName
	default:
		return ""
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing secret. Production deployments
// must override it through JWT_SECRET.
const DefaultJWTSecret = "crm-backend-dev-secret-change-me"

// DefaultAdminPassword is the bootstrap admin password used in development
const DefaultAdminPassword = "admin123"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Admin    AdminConfig    `mapstructure:"admin"`
	API      APIConfig      `mapstructure:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Type         string        `mapstructure:"type"` // postgres, sqlite
	URL          string        `mapstructure:"url"`  // full postgres DSN, e.g. the Supabase connection string
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	Path         string        `mapstructure:"path"`    // For SQLite
	SSLMode      string        `mapstructure:"sslmode"` // For PostgreSQL
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
}

// SecurityConfig holds token configuration
type SecurityConfig struct {
	JWTSecret     string         `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration  `mapstructure:"jwt_expiration"`
	RoleLevels    map[string]int `mapstructure:"role_levels"`
}

// AdminConfig describes the bootstrap admin credential
type AdminConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
	Role     string `mapstructure:"role"`
}

// APIConfig holds API-related configuration
type APIConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// LoadConfig loads configuration from .env, an optional config file and
// environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("CRM")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./crm.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "postgres")
	v.SetDefault("database.sslmode", "require")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)

	// Security defaults
	v.SetDefault("security.jwt_secret", DefaultJWTSecret)
	v.SetDefault("security.jwt_expiration", "24h")
	v.SetDefault("security.role_levels", map[string]int{
		"super_admin": 100,
		"admin":       90,
		"manager":     70,
		"team_leader": 50,
		"agent":       30,
	})

	// Admin defaults
	v.SetDefault("admin.enabled", true)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@crm.local")
	v.SetDefault("admin.name", "Super Admin")
	v.SetDefault("admin.password", DefaultAdminPassword)
	v.SetDefault("admin.role", "super_admin")

	// CORS defaults
	v.SetDefault("api.cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"})
	v.SetDefault("api.cors.allow_credentials", true)
	v.SetDefault("api.cors.max_age", 86400)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}

// overrideWithEnvVars applies the unprefixed variables hosting platforms set
func overrideWithEnvVars(v *viper.Viper) {
	envMappings := map[string]string{
		"PORT":           "server.port",
		"GIN_MODE":       "server.mode",
		"DATABASE_URL":   "database.url",
		"DB_TYPE":        "database.type",
		"DB_PASSWORD":    "database.password",
		"DB_USER":        "database.user",
		"JWT_SECRET":     "security.jwt_secret",
		"JWT_EXPIRES_IN": "security.jwt_expiration",
		"ADMIN_USERNAME": "admin.username",
		"ADMIN_EMAIL":    "admin.email",
		"ADMIN_PASSWORD": "admin.password",
		"LOG_LEVEL":      "logging.level",
		"LOG_FILE":       "logging.file",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}

	if os.Getenv("DATABASE_URL") == "" {
		if url := os.Getenv("SUPABASE_DB_URL"); url != "" {
			v.Set("database.url", url)
		}
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		v.Set("api.cors.allowed_origins", splitList(origins))
	}

	// A bare DATABASE_URL means the managed Postgres instance
	if os.Getenv("DB_TYPE") == "" && v.GetString("database.url") != "" {
		v.Set("database.type", "postgres")
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Security.JWTExpiration < time.Second {
		return fmt.Errorf("jwt expiration must be at least 1s, got %s", config.Security.JWTExpiration)
	}

	for role, level := range config.Security.RoleLevels {
		if _, err := auth.ParseRole(role); err != nil {
			return fmt.Errorf("unknown role in role_levels: %s", role)
		}
		if level <= 0 {
			return fmt.Errorf("role level for %s must be positive", role)
		}
	}

	switch config.Database.Type {
	case "postgres":
		if config.Database.URL == "" && (config.Database.Host == "" || config.Database.User == "") {
			return fmt.Errorf("postgres requires url or host and user")
		}
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("sqlite requires path")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", config.Database.Type)
	}

	if config.Admin.Enabled {
		if config.Admin.Username == "" || config.Admin.Password == "" {
			return fmt.Errorf("admin credential requires username and password")
		}
		if _, err := auth.ParseRole(config.Admin.Role); err != nil {
			return fmt.Errorf("unknown admin role: %s", config.Admin.Role)
		}
	}

	return nil
}

// Warnings lists insecure settings that are tolerated but should not reach production
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Security.JWTSecret == "" {
		warnings = append(warnings, "JWT secret is empty; token issuance and verification will fail")
	}
	if !c.IsProduction() {
		return warnings
	}
	if c.Security.JWTSecret == DefaultJWTSecret {
		warnings = append(warnings, "JWT_SECRET is not set; using the development signing secret")
	}
	if c.Admin.Enabled && c.Admin.Password == DefaultAdminPassword {
		warnings = append(warnings, "bootstrap admin uses the default password")
	}
	return warnings
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release" || c.Server.Mode == "production"
}

// GinMode maps the server mode onto one gin accepts
func (c *Config) GinMode() string {
	switch {
	case c.IsProduction():
		return "release"
	case c.Server.Mode == "test":
		return "test"
	default:
		return "debug"
	}
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// SanitizeForLogging returns a copy of the config with sensitive data redacted
func (c *Config) SanitizeForLogging() *Config {
	sanitized := *c

	if sanitized.Database.Password != "" {
		sanitized.Database.Password = "[REDACTED]"
	}

	if sanitized.Database.URL != "" {
		sanitized.Database.URL = "[REDACTED]"
	}

	if sanitized.Security.JWTSecret != "" {
		sanitized.Security.JWTSecret = "[REDACTED]"
	}

	if sanitized.Admin.Password != "" {
		sanitized.Admin.Password = "[REDACTED]"
	}

	return &sanitized
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

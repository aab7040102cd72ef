package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided
// via the config file or the environment.
type AppConfig struct {
	AppPort     string
	JWTSecret   string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for the index page cache and token blacklist
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Index page cache lifetime in seconds
	IndexCacheTTLSeconds int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Request throttling
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Post image retention
	UploadsSelfDestructEnabled bool
	UploadsSelfDestructMinutes int
	// Admins allowed to clear the index cache
	AdminUsernames []string
}

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting replaces the cached configuration. Tests only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}

func loadJSONConfig(path string, out *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		return err
	}
	set := func(key string, dst interface{}) {
		if v, ok := flat[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	set("app_port", &out.AppPort)
	set("jwt_secret", &out.JWTSecret)
	set("database_uri", &out.DatabaseURI)
	set("db_host", &out.DBHost)
	set("db_port", &out.DBPort)
	set("db_user", &out.DBUser)
	set("db_password", &out.DBPassword)
	set("db_name", &out.DBName)
	set("redis_host", &out.RedisHost)
	set("redis_port", &out.RedisPort)
	set("redis_db", &out.RedisDB)
	set("redis_password", &out.RedisPassword)
	set("index_cache_ttl_seconds", &out.IndexCacheTTLSeconds)
	set("gin_mode", &out.GinMode)
	set("gin_path", &out.GinPath)
	set("log_level", &out.LogLevel)
	set("log_path", &out.LogPath)
	set("log_max_size_mb", &out.LogMaxSizeMB)
	set("log_max_backups", &out.LogMaxBackups)
	set("log_max_age_days", &out.LogMaxAgeDays)
	set("log_compress", &out.LogCompress)
	set("rate_limit_per_minute", &out.RateLimitPerMinute)
	set("allowed_origins", &out.AllowedOrigins)
	set("uploads_self_destruct_enabled", &out.UploadsSelfDestructEnabled)
	set("uploads_self_destruct_minutes", &out.UploadsSelfDestructMinutes)
	set("admin_usernames", &out.AdminUsernames)
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "litepost"
	}
	if c.DBName == "" {
		c.DBName = "litepost"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.IndexCacheTTLSeconds == 0 {
		c.IndexCacheTTLSeconds = 20
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/access.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.UploadsSelfDestructMinutes == 0 {
		c.UploadsSelfDestructMinutes = 60 * 24 * 30
	}
}

func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := os.Getenv("INDEX_CACHE_TTL_SECONDS"); v != "" {
		c.IndexCacheTTLSeconds = mustParseInt(v)
	}
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.GinPath = getEnv("GIN_PATH", c.GinPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	if v := os.Getenv("UPLOADS_SELF_DESTRUCT_ENABLED"); v != "" {
		c.UploadsSelfDestructEnabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("UPLOADS_SELF_DESTRUCT_MINUTES"); v != "" {
		c.UploadsSelfDestructMinutes = mustParseInt(v)
	}
	c.AdminUsernames = readListEnv("ADMIN_USERNAMES", c.AdminUsernames)
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultVal
}

func mustParseInt(val string) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Fatalf("invalid integer value %q in environment", val)
	}
	return n
}

func readListEnv(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaults
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

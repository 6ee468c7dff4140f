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
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort     string
	JWTSecret   string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RateLimitPerMinute int
	AllowedOrigins     []string

	// Gin framework configuration
	GinMode string
	GinPath string

	// Redis for caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Domain constants
	AnswerReactionPoints int    // points moved per reaction toggle on an answer
	AcceptAnswerPoints   int    // points moved when a question accepts an answer
	StreakBadgeThreshold int    // streak must exceed this for the Streak Hero badge
	LoungeSlug           string // the distinguished group whose join grants a badge
	BroadcastMessage     string // DM content injected by a group broadcast

	// Uploads
	UploadsSelfDestructEnabled bool
	UploadsSelfDestructMinutes int

	// AI assist
	OpenAIAPIKey string
	OpenAIModel  string

	// Admins (by email, matched against the resolved principal)
	AdminEmails []string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration from environment variables. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> environment variable overrides
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

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch n := v.(type) {
			case float64:
				return int(n)
			case string:
				if i, err := strconv.Atoi(n); err == nil {
					return i
				}
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) (bool, bool) {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b, true
			}
		}
		return false, false
	}
	getList := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				var list []string
				for _, it := range arr {
					if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
						list = append(list, strings.TrimSpace(s))
					}
				}
				return list
			}
		}
		return nil
	}
	section := func(key string) map[string]any {
		if v, ok := raw[key]; ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
		return nil
	}

	if app := section("app"); app != nil {
		out.AppPort = getString(app, "port")
		out.JWTSecret = getString(app, "jwt_secret")
		out.GinMode = getString(app, "gin_mode")
		out.GinPath = getString(app, "gin_path")
		out.RateLimitPerMinute = getInt(app, "rate_limit_per_minute")
		out.AllowedOrigins = getList(app, "allowed_origins")
		out.AdminEmails = getList(app, "admin_emails")
	}
	if db := section("database"); db != nil {
		out.DatabaseURI = getString(db, "uri")
		out.DBHost = getString(db, "host")
		out.DBPort = getString(db, "port")
		out.DBUser = getString(db, "user")
		out.DBPassword = getString(db, "password")
		out.DBName = getString(db, "name")
	}
	if r := section("redis"); r != nil {
		out.RedisHost = getString(r, "host")
		out.RedisPort = getInt(r, "port")
		out.RedisDB = getInt(r, "db")
		out.RedisPassword = getString(r, "password")
	}
	if lg := section("log"); lg != nil {
		out.LogLevel = getString(lg, "level")
		out.LogPath = getString(lg, "path")
		out.LogMaxSizeMB = getInt(lg, "max_size_mb")
		out.LogMaxBackups = getInt(lg, "max_backups")
		out.LogMaxAgeDays = getInt(lg, "max_age_days")
		if b, ok := getBool(lg, "compress"); ok {
			out.LogCompress = b
		}
	}
	if d := section("domain"); d != nil {
		out.AnswerReactionPoints = getInt(d, "answer_reaction_points")
		out.AcceptAnswerPoints = getInt(d, "accept_answer_points")
		out.StreakBadgeThreshold = getInt(d, "streak_badge_threshold")
		out.LoungeSlug = getString(d, "lounge_slug")
		out.BroadcastMessage = getString(d, "broadcast_message")
	}
	if up := section("uploads"); up != nil {
		if b, ok := getBool(up, "self_destruct_enabled"); ok {
			out.UploadsSelfDestructEnabled = b
		}
		out.UploadsSelfDestructMinutes = getInt(up, "self_destruct_minutes")
	}
	if ai := section("ai"); ai != nil {
		out.OpenAIAPIKey = getString(ai, "openai_api_key")
		out.OpenAIModel = getString(ai, "openai_model")
	}
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "teamlink"
	}
	if c.DBName == "" {
		c.DBName = "teamlink"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
	if c.AnswerReactionPoints == 0 {
		c.AnswerReactionPoints = 5
	}
	if c.AcceptAnswerPoints == 0 {
		c.AcceptAnswerPoints = 15
	}
	if c.StreakBadgeThreshold == 0 {
		c.StreakBadgeThreshold = 5
	}
	if c.LoungeSlug == "" {
		c.LoungeSlug = "smokers-lounge"
	}
	if c.BroadcastMessage == "" {
		c.BroadcastMessage = "Come to smoke"
	}
	if c.UploadsSelfDestructMinutes == 0 {
		c.UploadsSelfDestructMinutes = 60
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = "gpt-4o-mini"
	}
}

func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.RedisPort = i
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.RedisDB = i
		}
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.RateLimitPerMinute = i
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var list []string
		for _, s := range strings.Split(v, ",") {
			if t := strings.TrimSpace(s); t != "" {
				list = append(list, t)
			}
		}
		if len(list) > 0 {
			c.AllowedOrigins = list
		}
	}
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		var list []string
		for _, s := range strings.Split(v, ",") {
			if t := strings.TrimSpace(s); t != "" {
				list = append(list, t)
			}
		}
		c.AdminEmails = list
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	c.LoungeSlug = getEnv("LOUNGE_SLUG", c.LoungeSlug)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
}

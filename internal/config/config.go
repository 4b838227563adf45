package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Image storage backends
const (
	ImageBackendSupabase = "supabase"
	ImageBackendFirebase = "firebase"
)

// Config holds every setting the server, worker and CLI read from the environment
type Config struct {
	Port string
	Env  string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	FirestoreMirror         bool

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	ImageBackend    string
	DefaultImageURL string
	MaxUploadBytes  int64

	LogLevel  string
	LogFormat string

	RateLimitPerSecond float64
	AuthAllowAnonymous bool
	WorkerInterval     time.Duration

	// EnvFile is the dotenv file that was loaded, empty when none was found
	EnvFile string
}

// Load reads .env (when present) and the process environment into a Config
func Load() (*Config, error) {
	envFile := ".env"
	if err := godotenv.Load(envFile); err != nil {
		envFile = ""
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		RedisURL:                v.GetString("REDIS_URL"),
		CacheTTL:                v.GetDuration("CACHE_TTL"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		FirebaseStorageBucket:   v.GetString("FIREBASE_STORAGE_BUCKET"),
		FirestoreMirror:         v.GetBool("FIRESTORE_MIRROR"),
		SupabaseURL:             v.GetString("SUPABASE_URL"),
		SupabaseServiceKey:      v.GetString("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:          v.GetString("SUPABASE_BUCKET"),
		ImageBackend:            strings.ToLower(v.GetString("IMAGE_BACKEND")),
		DefaultImageURL:         v.GetString("DEFAULT_IMAGE_URL"),
		MaxUploadBytes:          v.GetInt64("MAX_UPLOAD_BYTES"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFormat:               v.GetString("LOG_FORMAT"),
		RateLimitPerSecond:      v.GetFloat64("RATE_LIMIT_PER_SECOND"),
		AuthAllowAnonymous:      v.GetBool("AUTH_ALLOW_ANONYMOUS"),
		WorkerInterval:          v.GetDuration("WORKER_INTERVAL"),
		EnvFile:                 envFile,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_URL", "sqlite://recipes.db")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json")
	v.SetDefault("FIRESTORE_MIRROR", false)
	v.SetDefault("SUPABASE_BUCKET", "recipes")
	v.SetDefault("IMAGE_BACKEND", ImageBackendSupabase)
	v.SetDefault("DEFAULT_IMAGE_URL", "/static/images/recipe-placeholder.svg")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 5)
	v.SetDefault("AUTH_ALLOW_ANONYMOUS", false)
	v.SetDefault("WORKER_INTERVAL", "5m")
}

func (c *Config) validate() error {
	switch c.ImageBackend {
	case ImageBackendSupabase, ImageBackendFirebase:
	default:
		return fmt.Errorf("IMAGE_BACKEND must be %q or %q, got %q", ImageBackendSupabase, ImageBackendFirebase, c.ImageBackend)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.WorkerInterval <= 0 {
		return fmt.Errorf("WORKER_INTERVAL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether secure cookies and production logging apply
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SupabaseConfigured reports whether Supabase storage credentials are present
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

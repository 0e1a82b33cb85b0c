package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "default-secret-key-change-me"
	defaultJWTSecret     = "default-jwt-secret-change-me"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DB        DBConfig
	Session   SessionConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Upload    UploadConfig
	NATS      NATSConfig
	Seed      SeedConfig
	Teams     []string
	CORS      []string
	LoginRate string
}

type DBConfig struct {
	Driver          string
	Path            string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type SessionConfig struct {
	Store     string
	RedisHost string
	RedisPort string
	Secret    string
	TTL       time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type StorageConfig struct {
	Driver       string
	LocalDir     string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	SignedURLTTL time.Duration
}

type UploadConfig struct {
	MaxFileSize       int64
	MaxFilesPerTask   int
	AllowedExtensions []string
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type SeedConfig struct {
	Username    string
	Password    string
	CompanyName string
	CompanySlug string
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:      v.GetString("PORT"),
		GinMode:   v.GetString("GIN_MODE"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		Teams:     splitList(v.GetString("TEAMS")),
		CORS:      splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LoginRate: v.GetString("LOGIN_RATE_LIMIT"),
		DB: DBConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Path:            v.GetString("DB_PATH"),
			DSN:             v.GetString("DB_DSN"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Session: SessionConfig{
			Store:     strings.ToLower(v.GetString("SESSION_STORE")),
			RedisHost: v.GetString("REDIS_HOST"),
			RedisPort: v.GetString("REDIS_PORT"),
			Secret:    v.GetString("SESSION_SECRET"),
			TTL:       v.GetDuration("SESSION_TTL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
			LocalDir:     v.GetString("STORAGE_LOCAL_DIR"),
			Endpoint:     v.GetString("S3_ENDPOINT"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
			Bucket:       v.GetString("S3_BUCKET"),
			UseSSL:       v.GetBool("S3_USE_SSL"),
			SignedURLTTL: v.GetDuration("SIGNED_URL_TTL"),
		},
		Upload: UploadConfig{
			MaxFileSize:       v.GetInt64("MAX_FILE_SIZE_MB") * 1024 * 1024,
			MaxFilesPerTask:   v.GetInt("MAX_FILES_PER_TASK"),
			AllowedExtensions: splitList(strings.ToLower(v.GetString("ALLOWED_EXTENSIONS"))),
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		Seed: SeedConfig{
			Username:    v.GetString("SEED_SUPERADMIN_USERNAME"),
			Password:    v.GetString("SEED_SUPERADMIN_PASSWORD"),
			CompanyName: v.GetString("SEED_COMPANY_NAME"),
			CompanySlug: v.GetString("SEED_COMPANY_SLUG"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == defaultSessionSecret {
		log.Warn().Msg("SESSION_SECRET not set, using default insecure key")
	}
	if cfg.JWT.Secret == defaultJWTSecret {
		log.Warn().Msg("JWT_SECRET not set, using default insecure key")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "field_tasks.db")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "taskuser")
	v.SetDefault("DB_PASSWORD", "taskpassword")
	v.SetDefault("DB_NAME", "field_tasks")
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MAX_OPEN_CONNS", 15)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "300s")

	v.SetDefault("SESSION_STORE", "cookie")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_TTL", "168h")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("JWT_ISSUER", "field-task-api")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "task-photos")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("SIGNED_URL_TTL", "1h")

	v.SetDefault("MAX_FILE_SIZE_MB", 1024)
	v.SetDefault("MAX_FILES_PER_TASK", 10)
	v.SetDefault("ALLOWED_EXTENSIONS", "jpg,jpeg,png")
	v.SetDefault("TEAMS", "fusao,infraestrutura")

	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT_PREFIX", "field.notifications")

	v.SetDefault("LOGIN_RATE_LIMIT", "10-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("SEED_SUPERADMIN_USERNAME", "")
	v.SetDefault("SEED_SUPERADMIN_PASSWORD", "")
	v.SetDefault("SEED_COMPANY_NAME", "Matriz")
	v.SetDefault("SEED_COMPANY_SLUG", "matriz")
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.Driver == "postgres" && c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required when DB_DRIVER=postgres")
	}
	switch c.Session.Store {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	switch c.Storage.Driver {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "s3" && c.Storage.Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required when STORAGE_DRIVER=s3")
	}
	if c.Upload.MaxFilesPerTask <= 0 {
		return fmt.Errorf("MAX_FILES_PER_TASK must be positive")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS must not be empty")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

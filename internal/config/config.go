package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	S3       S3Config       `json:"s3"`
	Media    MediaConfig    `json:"media"`
	GeoIndex string         `json:"geo_index"` // "postgis" or "memory"
	APIKey   string         `json:"api_key,omitempty"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string        `json:"addr"`
	Password string        `json:"password,omitempty"`
	DB       int           `json:"db"`
	StatsTTL time.Duration `json:"stats_ttl"`
}

type S3Config struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"` // non-empty for S3-compatible stores
}

type MediaConfig struct {
	MaxFileSize   int64         `json:"max_file_size"`
	MaxFiles      int           `json:"max_files"`
	ThumbnailSize int           `json:"thumbnail_size"`
	UploadTimeout time.Duration `json:"upload_timeout"`
	FFmpegPath    string        `json:"ffmpeg_path"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "civicreport_db"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        int32(getEnvInt("POSTGRES_MAX_CONNS", 20)),
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			StatsTTL: getEnvDuration("REDIS_STATS_TTL", 30*time.Second),
		},
		S3: S3Config{
			Bucket:    getEnv("AWS_BUCKET_NAME", ""),
			Region:    getEnv("AWS_REGION", "us-east-1"),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:  getEnv("AWS_S3_ENDPOINT", ""),
		},
		Media: MediaConfig{
			MaxFileSize:   getEnvInt64("MEDIA_MAX_FILE_SIZE", 10<<20),
			MaxFiles:      getEnvInt("MEDIA_MAX_FILES", 5),
			ThumbnailSize: getEnvInt("MEDIA_THUMBNAIL_SIZE", 200),
			UploadTimeout: getEnvDuration("MEDIA_UPLOAD_TIMEOUT", 30*time.Second),
			FFmpegPath:    getEnv("MEDIA_FFMPEG_PATH", "ffmpeg"),
		},
		GeoIndex: getEnv("GEO_INDEX", "postgis"),
		APIKey:   getEnv("API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}
	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}
	if c.S3.Bucket == "" {
		return errors.New("AWS_BUCKET_NAME required")
	}
	if c.GeoIndex != "postgis" && c.GeoIndex != "memory" {
		return errors.New("GEO_INDEX must be postgis or memory")
	}
	if c.APIKey == "" {
		return errors.New("API_KEY required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

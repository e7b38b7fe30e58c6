package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug bool `yaml:"debug"`

	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | sqlite
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		Path     string `yaml:"path"` // sqlite only
	} `yaml:"database"`

	Minio struct {
		Endpoint      string        `yaml:"endpoint"`
		AccessKey     string        `yaml:"accessKey"`
		SecretKey     string        `yaml:"secretKey"`
		BucketName    string        `yaml:"bucketName"`
		Region        string        `yaml:"region"`
		UseSSL        bool          `yaml:"useSSL"`
		PresignExpiry time.Duration `yaml:"presignExpiry"`
	} `yaml:"minio"`

	OCR struct {
		BaseURL string `yaml:"baseURL"`
	} `yaml:"ocr"`

	OpenAI struct {
		APIKey      string `yaml:"apiKey"`
		BaseURL     string `yaml:"baseURL"`
		Model       string `yaml:"model"`
		VisionModel string `yaml:"visionModel"`
	} `yaml:"openai"`

	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`

	Timeouts struct {
		Storage time.Duration `yaml:"storage"`
		OCR     time.Duration `yaml:"ocr"`
		Model   time.Duration `yaml:"model"`
		Persist time.Duration `yaml:"persist"`
	} `yaml:"timeouts"`

	Uploads struct {
		TempDir  string `yaml:"tempDir"`
		MaxBytes int64  `yaml:"maxBytes"`
	} `yaml:"uploads"`

	Analysis struct {
		MaxHistoryBytes int `yaml:"maxHistoryBytes"`
	} `yaml:"analysis"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load baca file config.yaml, lalu override secret dari env dan isi default.
// A missing file is not an error: env and defaults alone are a valid config.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides secrets and endpoints from the environment.
func ApplyEnv(c *Config) {
	setFromEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setFromEnv(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setFromEnv(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setFromEnv(&c.Auth.JWTSecret, "JWT_SECRET")
	setFromEnv(&c.OCR.BaseURL, "OCR_SERVICE_URL")
	setFromEnv(&c.Database.Password, "DB_PASSWORD")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ApplyDefaults fills zero values.
func ApplyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "./data/carepipe.db"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "medical-records"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.OpenAI.VisionModel == "" {
		c.OpenAI.VisionModel = "gpt-4o-mini"
	}
	if c.Timeouts.Storage == 0 {
		c.Timeouts.Storage = 20 * time.Second
	}
	if c.Timeouts.OCR == 0 {
		c.Timeouts.OCR = 30 * time.Second
	}
	if c.Timeouts.Model == 0 {
		c.Timeouts.Model = 60 * time.Second
	}
	if c.Timeouts.Persist == 0 {
		c.Timeouts.Persist = 5 * time.Second
	}
	if c.Uploads.TempDir == "" {
		c.Uploads.TempDir = "./temp/uploads"
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = 20 << 20
	}
	if c.Analysis.MaxHistoryBytes == 0 {
		c.Analysis.MaxHistoryBytes = 12000
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
}

// Validate checks structural problems and the JWT secret. Other missing
// credentials are not an error here; they switch the matching adapter into
// mock mode.
func (c *Config) Validate() error {
	if !CredentialValid(c.Auth.JWTSecret) {
		return errors.New("auth.jwtSecret (env JWT_SECRET) must be set to a real secret")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Uploads.MaxBytes < 0 {
		return fmt.Errorf("uploads.maxBytes must not be negative")
	}
	return nil
}

var placeholderMarkers = []string{"placeholder", "changeme", "change-me", "your-", "your_", "xxx", "<"}

// CredentialValid is false for empty values and well-known placeholders.
func CredentialValid(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || v == "sk-..." {
		return false
	}
	lower := strings.ToLower(v)
	for _, m := range placeholderMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

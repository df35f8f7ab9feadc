// Package config loads server settings from an optional YAML file and
// DISHA_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Disha/internal/utils"
)

// Store drivers.
const (
	StoreMemory  = "memory"
	StoreSQLite  = "sqlite3"
	StoreSQLiteP = "sqlite"
)

// Summary providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Addr    string        `yaml:"addr"`
	Store   StoreConfig   `yaml:"store"`
	Admin   AdminConfig   `yaml:"admin"`
	Summary SummaryConfig `yaml:"summary"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Build   BuildConfig   `yaml:"-"`
}

type StoreConfig struct {
	// Driver is memory, sqlite3 (cgo) or sqlite (pure Go).
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path"`
	SnapshotPath  string `yaml:"snapshot_path"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type AdminConfig struct {
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisPrefix string        `yaml:"redis_prefix"`
	SweepEvery  time.Duration `yaml:"sweep_interval"`
}

type SummaryConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	OpenAIKey     string        `yaml:"openai_api_key"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	GeminiKey     string        `yaml:"gemini_api_key"`
}

type HTTPConfig struct {
	StaticDir       string        `yaml:"static_dir"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	TrustProxy      bool          `yaml:"trust_proxy"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

type BuildConfig struct {
	Commit    string
	BuildTime string
}

// Default returns a configuration that runs without any external service:
// in-memory store, template summaries, admin login disabled.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Store: StoreConfig{
			Driver: StoreMemory,
			Path:   "data/disha.db",
		},
		Admin: AdminConfig{
			Username:   "admin",
			TokenTTL:   12 * time.Hour,
			SweepEvery: time.Minute,
		},
		Summary: SummaryConfig{
			Provider: ProviderNone,
			Timeout:  10 * time.Second,
		},
		HTTP: HTTPConfig{ShutdownTimeout: 10 * time.Second},
		Log:  LogConfig{Mode: "production"},
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = utils.SafeEnv("DISHA_ADDR", c.Addr)
	c.Store.Driver = utils.SafeEnv("DISHA_DB_DRIVER", c.Store.Driver)
	c.Store.Path = utils.SafeEnv("DISHA_DB_PATH", c.Store.Path)
	c.Store.SnapshotPath = utils.SafeEnv("DISHA_SNAPSHOT_PATH", c.Store.SnapshotPath)
	c.Store.MigrationsDir = utils.SafeEnv("DISHA_MIGRATIONS_DIR", c.Store.MigrationsDir)

	c.Admin.Username = utils.SafeEnv("DISHA_ADMIN_USER", c.Admin.Username)
	c.Admin.Password = utils.SafeEnv("DISHA_ADMIN_PASSWORD", c.Admin.Password)
	c.Admin.JWTSecret = utils.SafeEnv("DISHA_JWT_SECRET", c.Admin.JWTSecret)
	c.Admin.TokenTTL = utils.EnvDuration("DISHA_TOKEN_TTL", c.Admin.TokenTTL)
	c.Admin.RedisAddr = utils.SafeEnv("DISHA_REDIS_ADDR", c.Admin.RedisAddr)
	c.Admin.RedisPrefix = utils.SafeEnv("DISHA_REDIS_PREFIX", c.Admin.RedisPrefix)

	c.Summary.Provider = utils.SafeEnv("DISHA_SUMMARY_PROVIDER", c.Summary.Provider)
	c.Summary.Model = utils.SafeEnv("DISHA_SUMMARY_MODEL", c.Summary.Model)
	c.Summary.Timeout = utils.EnvDuration("DISHA_SUMMARY_TIMEOUT", c.Summary.Timeout)
	c.Summary.OpenAIKey = utils.SafeEnv("OPENAI_API_KEY", c.Summary.OpenAIKey)
	c.Summary.OpenAIBaseURL = utils.SafeEnv("OPENAI_BASE_URL", c.Summary.OpenAIBaseURL)
	c.Summary.GeminiKey = utils.SafeEnv("GEMINI_API_KEY", c.Summary.GeminiKey)

	c.HTTP.StaticDir = utils.SafeEnv("DISHA_STATIC_DIR", c.HTTP.StaticDir)
	if v := utils.SafeEnv("DISHA_CORS_ORIGINS", ""); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	c.HTTP.TrustProxy = utils.EnvBool("DISHA_TRUST_PROXY", c.HTTP.TrustProxy)

	c.Log.Mode = utils.SafeEnv("DISHA_LOG_MODE", c.Log.Mode)

	c.Build.Commit = utils.SafeEnv("DISHA_COMMIT", c.Build.Commit)
	c.Build.BuildTime = utils.SafeEnv("DISHA_BUILD_TIME", c.Build.BuildTime)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects unknown drivers and providers. A provider without its
// key is not an error; the server falls back to template summaries.
func (c *Config) Validate() error {
	var errs []error
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StoreSQLiteP:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("store.path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	c.Summary.Provider = strings.ToLower(c.Summary.Provider)
	switch c.Summary.Provider {
	case ProviderNone, ProviderOpenAI, ProviderGemini:
	case "":
		c.Summary.Provider = ProviderNone
	default:
		errs = append(errs, fmt.Errorf("unknown summary provider %q", c.Summary.Provider))
	}
	if c.Admin.TokenTTL <= 0 {
		errs = append(errs, errors.New("admin.token_ttl must be positive"))
	}
	if c.Summary.Timeout <= 0 {
		errs = append(errs, errors.New("summary.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// AdminEnabled reports whether admin login can succeed.
func (c *Config) AdminEnabled() bool {
	return c.Admin.Username != "" && c.Admin.Password != ""
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type RQData struct {
	Username        string   `json:"username" yaml:"username"`
	Password        string   `json:"password" yaml:"password"`
	AuthURL         string   `json:"auth_url" yaml:"auth_url"`
	APIURL          string   `json:"api_url" yaml:"api_url"`
	InstrumentTypes []string `json:"instrument_types" yaml:"instrument_types"`
}

type JQData struct {
	Username      string   `json:"username" yaml:"username"`
	Password      string   `json:"password" yaml:"password"`
	URL           string   `json:"url" yaml:"url"`
	SecurityTypes []string `json:"security_types" yaml:"security_types"`
}

// Limits throttles outbound history queries. Zero disables a limiter.
type Limits struct {
	MaxRequestsPerMinute  int `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
	Burst                 int `json:"burst" yaml:"burst"`
}

type Cache struct {
	TTLSeconds     int `json:"ttl_sec" yaml:"ttl_sec"`
	CleanupSeconds int `json:"cleanup_sec" yaml:"cleanup_sec"`
}

type Postgres struct {
	URL   string `json:"url" yaml:"url"`
	Table string `json:"table" yaml:"table"`
}

type S3 struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	Prefix          string `json:"prefix" yaml:"prefix"`
	UseSSL          bool   `json:"use_ssl" yaml:"use_ssl"`
}

type Export struct {
	Dir    string `json:"dir" yaml:"dir"`
	Format string `json:"format" yaml:"format"`
}

type Config struct {
	Server   Server   `json:"server" yaml:"server"`
	RQData   RQData   `json:"rqdata" yaml:"rqdata"`
	JQData   JQData   `json:"jqdata" yaml:"jqdata"`
	Limits   Limits   `json:"limits" yaml:"limits"`
	Cache    Cache    `json:"cache" yaml:"cache"`
	Postgres Postgres `json:"postgres" yaml:"postgres"`
	S3       S3       `json:"s3" yaml:"s3"`
	Export   Export   `json:"export" yaml:"export"`
	LogLevel string   `json:"log_level" yaml:"log_level"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 30},
		Limits: Limits{
			MaxRequestsPerMinute: 60,
			Burst:                5,
		},
		Cache:    Cache{TTLSeconds: 60, CleanupSeconds: 300},
		Postgres: Postgres{Table: "bars"},
		S3:       S3{Bucket: "barfeed", UseSSL: true},
		Export:   Export{Dir: ".", Format: "csv"},
		LogLevel: "info",
	}
}

// Load reads JSON or YAML config from path, chosen by extension. If path is
// empty or the file does not exist, it returns defaults. Environment variables
// override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := unmarshal(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func unmarshal(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}

	if v := os.Getenv("RQDATA_USERNAME"); v != "" {
		cfg.RQData.Username = v
	}
	if v := os.Getenv("RQDATA_PASSWORD"); v != "" {
		cfg.RQData.Password = v
	}
	if v := os.Getenv("RQDATA_AUTH_URL"); v != "" {
		cfg.RQData.AuthURL = v
	}
	if v := os.Getenv("RQDATA_API_URL"); v != "" {
		cfg.RQData.APIURL = v
	}
	if v := os.Getenv("RQDATA_INSTRUMENT_TYPES"); v != "" {
		cfg.RQData.InstrumentTypes = splitCSV(v)
	}

	if v := os.Getenv("JQDATA_USERNAME"); v != "" {
		cfg.JQData.Username = v
	}
	if v := os.Getenv("JQDATA_PASSWORD"); v != "" {
		cfg.JQData.Password = v
	}
	if v := os.Getenv("JQDATA_URL"); v != "" {
		cfg.JQData.URL = v
	}
	if v := os.Getenv("JQDATA_SECURITY_TYPES"); v != "" {
		cfg.JQData.SecurityTypes = splitCSV(v)
	}

	if x, ok := envInt("DATAFEED_MAX_RPM"); ok && x >= 0 {
		cfg.Limits.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("DATAFEED_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Limits.MinRequestIntervalSec = x
	}
	if x, ok := envInt("DATAFEED_BURST"); ok && x > 0 {
		cfg.Limits.Burst = x
	}
	if x, ok := envInt("DATAFEED_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Cache.TTLSeconds = x
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.S3.UseSSL = true
		case "0", "false", "no", "n":
			cfg.S3.UseSSL = false
		}
	}

	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("EXPORT_FORMAT"); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return 0, false
	}
	return x, true
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hotel-ops-backend/utils"
)

// Config is the application configuration, loaded from an optional YAML file
// with environment variables taking precedence.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// Guest request-submission limiter.
	GuestRatePerSec float64 `yaml:"guest_rate_per_sec"`
	GuestBurst      int     `yaml:"guest_burst"`
}

type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// Load reads CONFIG_PATH (default config.yaml) if present, then applies env
// overrides and defaults. A missing file is fine; env-only deployments work.
func Load() (*Config, error) {
	var cfg Config

	path := utils.EnvOrDefault("CONFIG_PATH", "config.yaml")
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Port = port
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.GuestRatePerSec <= 0 {
		cfg.Server.GuestRatePerSec = 5
	}
	if cfg.Server.GuestBurst <= 0 {
		cfg.Server.GuestBurst = 10
	}

	dsn, err := resolveMySQLDSN(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	cfg.Database.DSN = dsn

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}

	return &cfg, nil
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// resolveMySQLDSN prefers MYSQL_URL/DATABASE_URL, then discrete DB_* vars,
// then the YAML value.
func resolveMySQLDSN(fromFile string) (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	if os.Getenv("DB_HOST") != "" || os.Getenv("DB_USER") != "" {
		user := utils.EnvOrDefault("DB_USER", "root")
		pass := utils.EnvOrDefault("DB_PASS", "")
		host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
		port := utils.EnvOrDefault("DB_PORT", "3306")
		dbName := utils.EnvOrDefault("DB_NAME", "hotel_ops")

		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			user, pass, host, port, dbName,
		), nil
	}

	if strings.TrimSpace(fromFile) != "" {
		return fromFile, nil
	}
	return "root:@tcp(127.0.0.1:3306)/hotel_ops?charset=utf8mb4&parseTime=True&loc=Local", nil
}

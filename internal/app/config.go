package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vetdesk/frontdesk-backend/internal/platform/envutil"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// Config carries the settings shared by both context binaries. Values come
// from an optional YAML file (CONFIG_PATH) with environment variables
// winning over file values.
type Config struct {
	Environment      string
	FrontDeskAddr    string
	ClinicMgmtAddr   string
	AllowOrigins     []string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	OutboxInterval   time.Duration
	ShutdownTimeout  time.Duration
}

type fileConfig struct {
	Environment    string   `yaml:"environment"`
	FrontDeskAddr  string   `yaml:"frontDeskAddr"`
	ClinicMgmtAddr string   `yaml:"clinicMgmtAddr"`
	AllowOrigins   []string `yaml:"allowOrigins"`
	Redis          struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	OutboxIntervalMillis  int `yaml:"outboxIntervalMillis"`
	ShutdownTimeoutSecond int `yaml:"shutdownTimeoutSeconds"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	var fc fileConfig
	if path := envutil.Get("CONFIG_PATH", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Info("loaded config file", "path", path)
	}

	cfg := Config{
		Environment:     envutil.Get("APP_ENV", orDefault(fc.Environment, "development"), log),
		FrontDeskAddr:   envutil.Get("FRONTDESK_ADDR", orDefault(fc.FrontDeskAddr, ":8080"), log),
		ClinicMgmtAddr:  envutil.Get("CLINICMGMT_ADDR", orDefault(fc.ClinicMgmtAddr, ":8081"), log),
		AllowOrigins:    fc.AllowOrigins,
		RedisAddr:       envutil.Get("REDIS_ADDR", orDefault(fc.Redis.Addr, "localhost:6379"), log),
		RedisPassword:   envutil.Get("REDIS_PASSWORD", fc.Redis.Password, log),
		RedisDB:         envutil.GetInt("REDIS_DB", fc.Redis.DB, log),
		OutboxInterval:  time.Duration(envutil.GetInt("OUTBOX_INTERVAL_MS", orDefaultInt(fc.OutboxIntervalMillis, 500), log)) * time.Millisecond,
		ShutdownTimeout: time.Duration(envutil.GetInt("SHUTDOWN_TIMEOUT_S", orDefaultInt(fc.ShutdownTimeoutSecond, 10), log)) * time.Second,
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

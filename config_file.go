package portalauth

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/powertrading/portalauth/client"
	"github.com/powertrading/portalauth/guard"
)

// duration lets YAML carry values like "10s" or "24h".
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", raw, err)
	}
	*d = duration(parsed)
	return nil
}

type fileConfig struct {
	Session struct {
		RedisPrefix string   `yaml:"redis_prefix"`
		PersistTTL  duration `yaml:"persist_ttl"`
	} `yaml:"session"`
	Guard struct {
		LoginPath     string `yaml:"login_path"`
		DefaultPath   string `yaml:"default_path"`
		ForbiddenPath string `yaml:"forbidden_path"`
		RedirectParam string `yaml:"redirect_param"`
	} `yaml:"guard"`
	Audit struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
		DropIfFull bool `yaml:"drop_if_full"`
	} `yaml:"audit"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
	Services map[string]struct {
		BaseURL      string   `yaml:"base_url"`
		Timeout      duration `yaml:"timeout"`
		SendIdentity bool     `yaml:"send_identity"`
	} `yaml:"services"`
}

// LoadConfig reads a YAML configuration: the session core settings plus one
// client.Config per backend service. Each service is configured
// independently (its own base address and timeout); the request pipeline
// they run is still shared.
func LoadConfig(r io.Reader) (Config, map[string]client.Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, nil, err
	}

	cfg := defaultConfig()

	// Seed the schema with the defaults so absent fields keep them.
	var fc fileConfig
	fc.Session.RedisPrefix = cfg.Session.RedisPrefix
	fc.Session.PersistTTL = duration(cfg.Session.PersistTTL)
	fc.Guard.LoginPath = cfg.Guard.LoginPath
	fc.Guard.DefaultPath = cfg.Guard.DefaultPath
	fc.Guard.ForbiddenPath = cfg.Guard.ForbiddenPath
	fc.Guard.RedirectParam = cfg.Guard.RedirectParam
	fc.Audit.Enabled = cfg.Audit.Enabled
	fc.Audit.BufferSize = cfg.Audit.BufferSize
	fc.Audit.DropIfFull = cfg.Audit.DropIfFull
	fc.Metrics.Enabled = cfg.Metrics.Enabled

	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, nil, fmt.Errorf("parse config: %v", err)
	}

	cfg.Session.RedisPrefix = orDefault(fc.Session.RedisPrefix, cfg.Session.RedisPrefix)
	cfg.Session.PersistTTL = time.Duration(fc.Session.PersistTTL)

	cfg.Guard = guard.Config{
		LoginPath:     orDefault(fc.Guard.LoginPath, cfg.Guard.LoginPath),
		DefaultPath:   orDefault(fc.Guard.DefaultPath, cfg.Guard.DefaultPath),
		ForbiddenPath: orDefault(fc.Guard.ForbiddenPath, cfg.Guard.ForbiddenPath),
		RedirectParam: orDefault(fc.Guard.RedirectParam, cfg.Guard.RedirectParam),
	}

	cfg.Audit = AuditConfig{
		Enabled:    fc.Audit.Enabled,
		BufferSize: fc.Audit.BufferSize,
		DropIfFull: fc.Audit.DropIfFull,
	}
	cfg.Metrics.Enabled = fc.Metrics.Enabled

	services := make(map[string]client.Config, len(fc.Services))
	for name, svc := range fc.Services {
		if svc.BaseURL == "" {
			return Config{}, nil, fmt.Errorf("service %q: base_url required", name)
		}
		services[name] = client.Config{
			Name:         name,
			BaseURL:      svc.BaseURL,
			Timeout:      time.Duration(svc.Timeout),
			SendIdentity: svc.SendIdentity,
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}

	return cfg, services, nil
}

// LoadConfigFile is LoadConfig over a file path.
func LoadConfigFile(path string) (Config, map[string]client.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, nil, err
	}
	defer f.Close()
	return LoadConfig(f)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

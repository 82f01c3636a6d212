package portalauth

import (
	"errors"
	"time"

	"github.com/powertrading/portalauth/guard"
	"github.com/powertrading/portalauth/role"
)

// Config defines the session core's settings.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session SessionConfig
	Guard   guard.Config
	Audit   AuditConfig
	Metrics MetricsConfig

	// Roles overrides the built-in role hierarchy when non-empty. The
	// table must be reflexive and reference only roles it defines.
	Roles map[role.Role][]role.Role
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines persistence settings for the session state.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// RedisPrefix namespaces the three persisted entries.
	RedisPrefix string
	// PersistTTL caps the lifetime of the persisted session. Zero keeps
	// entries until an explicit logout.
	PersistTTL time.Duration
}

// AuditConfig controls the async audit dispatcher.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "portal:session",
		},
		Guard: guard.Config{
			LoginPath:     "/login",
			DefaultPath:   "/",
			ForbiddenPath: "/403",
			RedirectParam: "redirect",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for internally inconsistent values.
//
// Validate may return an error when input validation fails.
func (c *Config) Validate() error {
	if c.Session.PersistTTL < 0 {
		return errors.New("Session.PersistTTL must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Roles != nil {
		out.Roles = make(map[role.Role][]role.Role, len(cfg.Roles))
		for r, contained := range cfg.Roles {
			out.Roles[r] = append([]role.Role(nil), contained...)
		}
	}
	return out
}

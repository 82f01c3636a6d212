package portalauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/powertrading/portalauth/guard"
	"github.com/powertrading/portalauth/role"
	"github.com/powertrading/portalauth/store"
)

// Builder assembles the session core: state, persistence, role hierarchy,
// navigation guard, audit, and metrics.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	auth       Authenticator
	profiles   ProfileService
	introspect TokenIntrospector

	auditSink AuditSink
	onExpired func()

	built bool
}

// New creates a Builder with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing session persistence.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuthenticator sets the external authentication collaborator.
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.auth = a
	return b
}

// WithProfileService sets the external profile collaborator. Optional:
// without it, UpdateProfile and RefreshProfile return ErrSessionNotReady.
func (b *Builder) WithProfileService(p ProfileService) *Builder {
	b.profiles = p
	return b
}

// WithIntrospector sets the token-introspection collaborator. Optional:
// without it, CheckToken returns ErrSessionNotReady.
func (b *Builder) WithIntrospector(i TokenIntrospector) *Builder {
	b.introspect = i
	return b
}

// WithAuditSink sets the audit event destination.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithSessionExpiredHandler registers the callback invoked when an HTTP 401
// clears an established session. The application shell uses it to navigate
// to the login route; the session core itself never navigates.
func (b *Builder) WithSessionExpiredHandler(fn func()) *Builder {
	b.onExpired = fn
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Session. The builder is
// single-use.
//
// Build may return an error when input validation fails or required
// collaborators are missing.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.auth == nil {
		return nil, errors.New("authenticator required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hierarchy := role.Default()
	if len(cfg.Roles) > 0 {
		h, err := role.New(cfg.Roles)
		if err != nil {
			return nil, err
		}
		hierarchy = h
	}

	session := &Session{
		cfg:        cfg,
		auth:       b.auth,
		profiles:   b.profiles,
		introspect: b.introspect,
		store:      store.NewStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.PersistTTL),
		hierarchy:  hierarchy,
		guard:      guard.New(cfg.Guard, hierarchy),
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
		onExpired:  b.onExpired,
	}

	b.built = true

	return session, nil
}

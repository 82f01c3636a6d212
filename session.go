package portalauth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/powertrading/portalauth/client"
	"github.com/powertrading/portalauth/guard"
	"github.com/powertrading/portalauth/role"
	"github.com/powertrading/portalauth/store"
)

// Session is the process-wide authenticated-identity state: token, profile,
// permission set, and logged-in flag. Exactly one instance exists for the
// process lifetime; all mutation goes through the documented operations,
// which serialize behind one mutex. Two logical tasks (a profile refresh and
// a 401-triggered logout, say) can interleave on a multi-threaded runtime,
// so the single-writer discipline is enforced here rather than assumed.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	cfg Config

	mu          sync.Mutex
	token       string
	profile     *UserProfile
	permissions []string
	loggedIn    bool

	// loginSeq orders session-mutating calls: a call whose captured
	// sequence no longer matches by the time its result arrives was
	// superseded and must discard that result (last-initiated-wins).
	loginSeq uint64

	auth       Authenticator
	profiles   ProfileService
	introspect TokenIntrospector

	store     *store.Store
	hierarchy *role.Hierarchy
	guard     *guard.Guard
	audit     *auditDispatcher
	metrics   *Metrics
	onExpired func()
}

// Close flushes the audit dispatcher. The session itself holds no other
// resources.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// Guard returns the navigation guard sharing this session's role hierarchy.
// Session and guard consult one resolver; there is no second containment
// table to drift out of sync.
func (s *Session) Guard() *guard.Guard {
	return s.guard
}

// Hierarchy returns the shared role hierarchy resolver.
func (s *Session) Hierarchy() *role.Hierarchy {
	return s.hierarchy
}

// NewClient creates a backend-service client wired to this session: the
// session supplies the bearer token and caller identity, and an HTTP 401
// clears the session through HandleUnauthorized before the call fails.
func (s *Session) NewClient(cfg client.Config) *client.Client {
	return client.New(cfg, s, s.HandleUnauthorized)
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events discarded under pressure.
func (s *Session) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

/*
====================================
READ QUERIES
====================================
*/

// LoggedIn reports whether a session is established. It is true iff both
// token and profile are present.
func (s *Session) LoggedIn() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Token returns the current bearer token. The whole value is swapped
// atomically by the mutating operations; a concurrent reader never observes
// a partially written token.
func (s *Session) Token() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.token == "" {
		return "", false
	}
	return s.token, true
}

// Identity returns the current user ID for the caller-identity header.
func (s *Session) Identity() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.profile == nil {
		return "", false
	}
	return s.profile.UserID, true
}

// Profile returns a copy of the current profile snapshot.
func (s *Session) Profile() (UserProfile, bool) {
	if s == nil {
		return UserProfile{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.profile == nil {
		return UserProfile{}, false
	}
	return *s.profile, true
}

// Permissions returns a copy of the current permission set.
func (s *Session) Permissions() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return nil
	}
	return append([]string(nil), s.permissions...)
}

// HasPermission reports whether the session holds the named permission.
// Always false when logged out; never an error.
func (s *Session) HasPermission(name string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return false
	}
	for _, p := range s.permissions {
		if p == name {
			return true
		}
	}
	return false
}

// HasRole reports whether the current role satisfies the required role via
// the shared hierarchy. Always false when logged out; never an error.
func (s *Session) HasRole(required role.Role) bool {
	current, ok := s.CurrentRole()
	if !ok {
		return false
	}
	return s.hierarchy.Satisfies(current, required)
}

// CurrentRole returns the logged-in user's role.
func (s *Session) CurrentRole() (role.Role, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.profile == nil {
		return "", false
	}
	return s.profile.Role, true
}

// DisplayName returns the user's real name, falling back to the username,
// then to "unknown".
func (s *Session) DisplayName() string {
	p, ok := s.Profile()
	if !ok {
		return "unknown"
	}
	if p.RealName != "" {
		return p.RealName
	}
	if p.Username != "" {
		return p.Username
	}
	return "unknown"
}

/*
====================================
401 SIDE EFFECT
====================================
*/

// HandleUnauthorized clears the session in response to an HTTP 401: the
// single error kind with an automatic session-clearing side effect. The
// persisted entries are deleted best-effort, and the expiry handler wired at
// build time is notified exactly once per established session so the
// application shell can navigate to login. No navigation happens here.
func (s *Session) HandleUnauthorized(ctx context.Context) {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.loginSeq++
	wasLoggedIn := s.loggedIn
	userID := ""
	if s.profile != nil {
		userID = s.profile.UserID
	}
	s.clearLocked()
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Delete(ctx)
	}

	if !wasLoggedIn {
		return
	}

	s.metrics.Inc(MetricSessionExpired)
	s.metrics.Inc(MetricLogout)
	s.audit.Emit(ctx, AuditEvent{
		EventType: AuditSessionExpired,
		UserID:    userID,
		Success:   true,
	})

	if s.onExpired != nil {
		s.onExpired()
	}
}

/*
====================================
INTERNAL STATE HELPERS
====================================
*/

// clearLocked resets all four state fields. Callers hold s.mu.
func (s *Session) clearLocked() {
	s.token = ""
	s.profile = nil
	s.permissions = nil
	s.loggedIn = false
}

// applyLocked installs a full login result. Callers hold s.mu.
func (s *Session) applyLocked(token string, profile UserProfile, permissions []string) {
	s.token = token
	p := profile
	s.profile = &p
	s.permissions = append([]string(nil), permissions...)
	s.loggedIn = true
}

// persistLocked writes the three entries behind the current state. Callers
// hold s.mu; the session stays authoritative even when persistence fails.
func (s *Session) persistLocked(ctx context.Context) error {
	if s.store == nil || !s.loggedIn || s.profile == nil {
		return nil
	}

	profileJSON, err := json.Marshal(s.profile)
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, store.Snapshot{
		Token:       s.token,
		Profile:     profileJSON,
		Permissions: append([]string(nil), s.permissions...),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

package portalauth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/powertrading/portalauth/store"
)

// Restore reads the three persisted entries and re-establishes the session
// from them. Any missing entry, a profile that fails validation, or a
// bearer token that is a JWT and already expired rejects the restore: the
// session is left fully cleared and the leftover entries are deleted, so no
// partial session can exist. Restore never returns an error; an absent or
// unusable persisted session is a normal cold start, not a failure.
func (s *Session) Restore(ctx context.Context) {
	if s == nil || s.store == nil {
		return
	}

	s.mu.Lock()
	s.loginSeq++
	seq := s.loginSeq
	s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrSessionIncomplete) {
			_ = s.store.Delete(ctx)
			s.rejectRestore(ctx, "persisted session incomplete")
			return
		}
		// Storage unreachable: proceed logged out without deleting
		// entries we cannot see.
		s.rejectRestore(ctx, err.Error())
		return
	}

	var profile UserProfile
	if err := json.Unmarshal(snap.Profile, &profile); err != nil || !profile.Valid() {
		_ = s.store.Delete(ctx)
		s.rejectRestore(ctx, "persisted profile malformed")
		return
	}

	if tokenExpired(snap.Token) {
		_ = s.store.Delete(ctx)
		s.rejectRestore(ctx, "persisted token expired")
		return
	}

	s.mu.Lock()
	if seq != s.loginSeq {
		s.mu.Unlock()
		return
	}
	s.applyLocked(snap.Token, profile, snap.Permissions)
	s.mu.Unlock()

	s.metrics.Inc(MetricRestoreSuccess)
	s.audit.Emit(ctx, AuditEvent{
		EventType: AuditSessionRestored,
		UserID:    profile.UserID,
		Success:   true,
	})
}

func (s *Session) rejectRestore(ctx context.Context, reason string) {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	s.metrics.Inc(MetricRestoreRejected)
	s.audit.Emit(ctx, AuditEvent{
		EventType: AuditRestoreRejected,
		Error:     reason,
	})
}

// tokenExpired peeks at the token's exp claim without verifying the
// signature (verification is the backend's job). An opaque, non-JWT token
// is accepted as-is.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// CheckToken asks the token-introspection collaborator whether the current
// token is still valid. An invalid or expired token clears the session
// locally (the server-side session is already gone). Transport failures are
// returned without touching session state.
func (s *Session) CheckToken(ctx context.Context) (bool, error) {
	if s == nil {
		return false, ErrSessionNotReady
	}

	token, ok := s.Token()
	if !ok {
		return false, nil
	}

	if s.introspect == nil {
		return false, ErrSessionNotReady
	}

	info, err := s.introspect.Introspect(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			s.HandleUnauthorized(ctx)
			return false, nil
		}
		return false, err
	}

	if !info.ExpiresAt.IsZero() && info.ExpiresAt.Before(time.Now()) {
		s.HandleUnauthorized(ctx)
		return false, nil
	}

	return true, nil
}

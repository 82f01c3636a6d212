package portalauth

import "context"

// Login delegates credential verification to the authentication
// collaborator and, on success, atomically installs token, profile, and
// permissions, then persists the three entries.
//
// On failure the session is left unchanged and the specific cause is
// returned: ErrInvalidCredentials, ErrServerUnavailable, or ErrTimeout.
// A login superseded while in flight by a newer login or a logout discards
// its result and returns ErrLoginSuperseded, even when the backend accepted
// it: last-initiated-wins, not last-to-complete-wins.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if s == nil || s.auth == nil {
		return ErrSessionNotReady
	}

	s.mu.Lock()
	s.loginSeq++
	seq := s.loginSeq
	s.mu.Unlock()

	result, err := s.auth.Authenticate(ctx, creds)

	s.mu.Lock()
	if seq != s.loginSeq {
		s.mu.Unlock()
		s.metrics.Inc(MetricLoginSuperseded)
		return ErrLoginSuperseded
	}

	if err != nil {
		s.mu.Unlock()
		s.metrics.Inc(MetricLoginFailure)
		s.audit.Emit(ctx, AuditEvent{
			EventType: AuditLoginFailure,
			Account:   creds.Account,
			Error:     err.Error(),
		})
		return err
	}

	if result == nil || result.Token == "" || !result.Profile.Valid() {
		s.mu.Unlock()
		s.metrics.Inc(MetricLoginFailure)
		s.audit.Emit(ctx, AuditEvent{
			EventType: AuditLoginFailure,
			Account:   creds.Account,
			Error:     ErrLoginResponseInvalid.Error(),
		})
		return ErrLoginResponseInvalid
	}

	s.applyLocked(result.Token, result.Profile, result.Permissions)
	persistErr := s.persistLocked(ctx)
	userID := result.Profile.UserID
	s.mu.Unlock()

	s.metrics.Inc(MetricLoginSuccess)
	event := AuditEvent{
		EventType: AuditLoginSuccess,
		UserID:    userID,
		Account:   creds.Account,
		Success:   true,
	}
	if persistErr != nil {
		// The in-memory session is authoritative; a failed write only
		// means the session will not survive a restart.
		event.Metadata = map[string]string{"persist_error": persistErr.Error()}
	}
	s.audit.Emit(ctx, event)

	return nil
}

// Logout clears all session state and deletes the three persisted entries.
// It is idempotent: logging out while logged out is a no-op, never an
// error. The server-side logout call is best-effort; local invalidation is
// authoritative and runs regardless of its outcome.
func (s *Session) Logout(ctx context.Context) {
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
	s.mu.Unlock()

	if wasLoggedIn && s.auth != nil {
		// Best-effort server-side invalidation; failure is irrelevant.
		_ = s.auth.Logout(ctx)
	}

	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Delete(ctx)
	}

	if wasLoggedIn {
		s.metrics.Inc(MetricLogout)
		s.audit.Emit(ctx, AuditEvent{
			EventType: AuditLogout,
			UserID:    userID,
			Success:   true,
		})
	}
}

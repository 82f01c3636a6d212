package portalauth

import "context"

// UpdateProfile sends the requested changes to the profile collaborator and
// merges the fields the backend accepted into a fresh profile snapshot.
// Fields absent from the accepted response stay unchanged (partial update
// semantics). The merged snapshot is re-persisted.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if s.profiles == nil {
		return ErrSessionNotReady
	}
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}

	accepted, err := s.profiles.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// A 401 or logout may have raced the round trip; the accepted fields
	// belong to a session that no longer exists.
	if !s.loggedIn || s.profile == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}

	next := *s.profile
	mergeProfile(&next, accepted)
	s.profile = &next
	persistErr := s.persistLocked(ctx)
	userID := next.UserID
	s.mu.Unlock()

	s.metrics.Inc(MetricProfileUpdated)
	s.audit.Emit(ctx, AuditEvent{
		EventType: AuditProfileUpdated,
		UserID:    userID,
		Success:   true,
	})

	return persistErr
}

func mergeProfile(dst *UserProfile, accepted ProfileUpdate) {
	if accepted.RealName != nil {
		dst.RealName = *accepted.RealName
	}
	if accepted.Phone != nil {
		dst.Phone = *accepted.Phone
	}
	if accepted.Email != nil {
		dst.Email = *accepted.Email
	}
	if accepted.Department != nil {
		dst.Department = *accepted.Department
	}
	if accepted.Position != nil {
		dst.Position = *accepted.Position
	}
}

// RefreshProfile re-fetches the full profile from the collaborator and
// replaces the in-memory snapshot wholesale, then re-persists. The fetched
// profile must itself be well-formed; a malformed response leaves the
// current snapshot untouched.
func (s *Session) RefreshProfile(ctx context.Context) error {
	if s == nil || s.profiles == nil {
		return ErrSessionNotReady
	}
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}

	fetched, err := s.profiles.FetchProfile(ctx)
	if err != nil {
		return err
	}
	if !fetched.Valid() {
		return ErrLoginResponseInvalid
	}

	s.mu.Lock()
	if !s.loggedIn {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	p := *fetched
	s.profile = &p
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	return persistErr
}

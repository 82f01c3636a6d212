// Package portalauth is the client-side session and authorization core for
// the data-marketplace portal.
//
// It owns four concerns and nothing else:
//
//   - Session state: one process-wide, mutex-guarded instance holding the
//     bearer token, profile snapshot, and permission set, established by
//     Login or Restore and cleared by Logout or an HTTP 401.
//   - Role hierarchy: a single pure resolver (package role) consulted by
//     both the session's HasRole and the navigation guard, so containment
//     decisions cannot drift between the two.
//   - Navigation guarding: a pure decision function (package guard)
//     evaluated before every route transition, with explicit protection
//     against login-redirect loops.
//   - API client normalization: one shared request pipeline (package
//     client) for the independently configured backend-service clients,
//     with a single centralized mapping from envelopes and transport
//     failures to the error taxonomy.
//
// The backend authentication and authorization implementation, token
// signing and verification, and page rendering are external collaborators.
package portalauth

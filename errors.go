package portalauth

import (
	"errors"

	"github.com/powertrading/portalauth/client"
)

var (
	// ErrInvalidCredentials is returned by Login when the backend rejects
	// the account/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrServerUnavailable is returned by Login when the authentication
	// backend answered with a server-side failure.
	ErrServerUnavailable = errors.New("authentication backend unavailable")
	// ErrLoginSuperseded is returned by a Login call whose result arrived
	// after a newer login or logout was initiated. Its result is discarded.
	ErrLoginSuperseded = errors.New("login superseded by a newer attempt")
	// ErrNotLoggedIn is returned by session-mutating operations that
	// require an established session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionNotReady is returned when an operation needs a
	// collaborator that was not wired in at build time.
	ErrSessionNotReady = errors.New("session not initialized")
	// ErrLoginResponseInvalid is returned when the authentication backend
	// reports success but the payload is missing its token or profile.
	ErrLoginResponseInvalid = errors.New("login response invalid")
)

// Transport-layer taxonomy, re-exported from the client layer so callers
// holding only the root package can match every error kind.
var (
	// ErrUnauthenticated mirrors client.ErrUnauthenticated.
	ErrUnauthenticated = client.ErrUnauthenticated
	// ErrForbidden mirrors client.ErrForbidden.
	ErrForbidden = client.ErrForbidden
	// ErrNotFound mirrors client.ErrNotFound.
	ErrNotFound = client.ErrNotFound
	// ErrServerError mirrors client.ErrServerError.
	ErrServerError = client.ErrServerError
	// ErrTimeout mirrors client.ErrTimeout.
	ErrTimeout = client.ErrTimeout
	// ErrNetworkUnreachable mirrors client.ErrNetworkUnreachable.
	ErrNetworkUnreachable = client.ErrNetworkUnreachable
)

// BusinessError is the domain-level rejection type produced by the client
// layer. The server-supplied message is preserved verbatim.
type BusinessError = client.BusinessError

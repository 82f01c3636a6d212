package client

import (
	"context"
	"sync"
)

// Binding is a late-bound TokenSource and UnauthorizedHandler. It exists to
// break the construction cycle between the session and the service clients:
// a client is built against an empty Binding first, and the session is bound
// in once it exists. Until then the client sends unauthenticated requests
// and treats 401 as purely informational.
type Binding struct {
	mu      sync.RWMutex
	tokens  TokenSource
	handler UnauthorizedHandler
}

// Bind installs the token source and 401 handler. Safe to call once the
// session is built; concurrent in-flight requests observe either the old or
// the new binding, never a torn one.
func (b *Binding) Bind(tokens TokenSource, handler UnauthorizedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = tokens
	b.handler = handler
}

// Token implements TokenSource.
func (b *Binding) Token() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.tokens == nil {
		return "", false
	}
	return b.tokens.Token()
}

// Identity implements TokenSource.
func (b *Binding) Identity() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.tokens == nil {
		return "", false
	}
	return b.tokens.Identity()
}

// HandleUnauthorized forwards to the bound handler, if any.
func (b *Binding) HandleUnauthorized(ctx context.Context) {
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()
	if handler != nil {
		handler(ctx)
	}
}

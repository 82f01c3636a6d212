// Package guard evaluates navigations against the current session before a
// route transition is committed. Evaluation is a pure function of (target,
// origin, session view): it never mutates session state, and it must
// complete before the target route loads. It is a blocking gate, not a
// fire-and-forget check.
package guard

import (
	"net/url"

	"github.com/powertrading/portalauth/role"
)

// Action is the outcome kind of a guard evaluation.
type Action int

const (
	// ActionAllow lets the navigation proceed to its target.
	ActionAllow Action = iota
	// ActionRedirect sends the navigation to Decision.Path instead.
	ActionRedirect
	// ActionDeny cancels the navigation outright.
	ActionDeny
)

// Decision is the guard's verdict for one navigation. Replace mirrors the
// history-replacing redirects of the portal shell: a redirected navigation
// must not leave the denied target on the history stack.
type Decision struct {
	Action  Action
	Path    string
	Replace bool
}

// SessionView is the read-only session surface the guard consumes. The
// concrete session satisfies it; tests can substitute a fixture.
type SessionView interface {
	LoggedIn() bool
	CurrentRole() (role.Role, bool)
}

// Navigation describes one attempted route transition. Query carries the
// target's query parameters; FullPath, when set, is the original requested
// path including query (used verbatim as the redirect parameter).
type Navigation struct {
	Target   Route
	Query    url.Values
	Origin   Route
	FullPath string
}

// Config holds the guard's fixed route anchors.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	LoginPath     string
	DefaultPath   string
	ForbiddenPath string
	RedirectParam string
}

func (c Config) withDefaults() Config {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.DefaultPath == "" {
		c.DefaultPath = "/"
	}
	if c.ForbiddenPath == "" {
		c.ForbiddenPath = "/403"
	}
	if c.RedirectParam == "" {
		c.RedirectParam = "redirect"
	}
	return c
}

// Guard is the navigation gatekeeper. It shares one role.Hierarchy with the
// session so containment decisions cannot drift between the two.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	cfg       Config
	hierarchy *role.Hierarchy
}

// New creates a Guard. A nil hierarchy falls back to the platform default.
func New(cfg Config, hierarchy *role.Hierarchy) *Guard {
	if hierarchy == nil {
		hierarchy = role.Default()
	}
	return &Guard{
		cfg:       cfg.withDefaults(),
		hierarchy: hierarchy,
	}
}

// Evaluate decides one navigation. Rules, in order:
//
//  1. Target is the login route: a logged-in user is bounced to the carried
//     redirect path (or the default landing route); anyone else passes.
//  2. Loop guard: when the origin is already the login route, or the target
//     already carries the redirect parameter, a bounce to login attaches no
//     further redirect parameter. This is what breaks the
//     login→redirect→login cycle.
//  3. An unauthenticated navigation to a protected route redirects to login
//     with the originally requested path as the redirect parameter (unless
//     rule 2 applies).
//  4. A role-restricted route admits the user iff the current role satisfies
//     at least one required role; otherwise the navigation lands on the
//     forbidden terminal route.
//  5. Everything else is allowed.
func (g *Guard) Evaluate(nav Navigation, session SessionView) Decision {
	targetIsLogin := nav.Target.Path == g.cfg.LoginPath
	originIsLogin := nav.Origin.Path == g.cfg.LoginPath

	// A login→login transition has nowhere sane to go; cancel it.
	if targetIsLogin && originIsLogin {
		return Decision{Action: ActionDeny}
	}

	if targetIsLogin {
		if session != nil && session.LoggedIn() {
			path := nav.Query.Get(g.cfg.RedirectParam)
			if path == "" {
				path = g.cfg.DefaultPath
			}
			return Decision{Action: ActionRedirect, Path: path}
		}
		return Decision{Action: ActionAllow}
	}

	loggedIn := session != nil && session.LoggedIn()

	if nav.Target.RequiresAuth && !loggedIn {
		if originIsLogin || nav.Query.Has(g.cfg.RedirectParam) {
			return Decision{Action: ActionRedirect, Path: g.cfg.LoginPath, Replace: true}
		}
		return Decision{
			Action:  ActionRedirect,
			Path:    g.cfg.LoginPath + "?" + g.cfg.RedirectParam + "=" + url.QueryEscape(g.fullPath(nav)),
			Replace: true,
		}
	}

	if len(nav.Target.RequiresRole) > 0 && loggedIn {
		current, ok := session.CurrentRole()
		if !ok || !g.hierarchy.SatisfiesAny(current, nav.Target.RequiresRole) {
			return Decision{Action: ActionRedirect, Path: g.cfg.ForbiddenPath, Replace: true}
		}
	}

	return Decision{Action: ActionAllow}
}

func (g *Guard) fullPath(nav Navigation) string {
	if nav.FullPath != "" {
		return nav.FullPath
	}
	if len(nav.Query) > 0 {
		return nav.Target.Path + "?" + nav.Query.Encode()
	}
	return nav.Target.Path
}

package portalauth

import (
	"context"
	"time"

	"github.com/powertrading/portalauth/role"
)

// AccountStatus represents the lifecycle state of a portal account.
type AccountStatus string

const (
	// StatusActive is an account in good standing.
	StatusActive AccountStatus = "active"
	// StatusInactive is a locked or rejected account.
	StatusInactive AccountStatus = "inactive"
	// StatusPending is an account awaiting review.
	StatusPending AccountStatus = "pending"
)

// UserProfile is the identity snapshot owned by the Session. It is replaced
// wholesale on refresh and never field-mutated from outside the documented
// session operations.
type UserProfile struct {
	UserID        string        `json:"userId"`
	Username      string        `json:"username"`
	RealName      string        `json:"realName"`
	CompanyName   string        `json:"companyName"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Department    string        `json:"department"`
	Position      string        `json:"position"`
	Role          role.Role     `json:"role"`
	Status        AccountStatus `json:"status"`
	CreateTime    string        `json:"createTime"`
	LastLoginTime string        `json:"lastLoginTime,omitempty"`
}

// Valid reports whether the profile is well-formed enough to restore a
// session from: a non-empty user ID and username.
func (p *UserProfile) Valid() bool {
	return p != nil && p.UserID != "" && p.Username != ""
}

// Credentials is the login input. Captcha is optional.
type Credentials struct {
	Account  string
	Password string
	Captcha  string
}

// LoginResult is the authentication collaborator's success payload.
type LoginResult struct {
	Token       string
	Profile     UserProfile
	Permissions []string
}

// TokenInfo is the token-introspection collaborator's view of a token.
type TokenInfo struct {
	UserID      string
	Username    string
	Roles       []role.Role
	Permissions []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ProfileUpdate carries the mutable profile fields. A nil field means "leave
// unchanged", both on the request and in the accepted-fields response.
type ProfileUpdate struct {
	RealName   *string
	Phone      *string
	Email      *string
	Department *string
	Position   *string
}

// Authenticator is the external authentication collaborator. Authenticate
// must return ErrInvalidCredentials, ErrServerUnavailable, or ErrTimeout on
// failure, never a bare transport error.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) error
}

// ProfileService is the external profile collaborator. UpdateProfile returns
// the fields the backend actually accepted; unaccepted fields come back nil.
type ProfileService interface {
	FetchProfile(ctx context.Context) (*UserProfile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (ProfileUpdate, error)
}

// TokenIntrospector is the external token-introspection collaborator. An
// invalid or expired token yields ErrUnauthenticated.
type TokenIntrospector interface {
	Introspect(ctx context.Context, token string) (*TokenInfo, error)
}

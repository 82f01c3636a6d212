// Package userapi is the user-service client. It implements the session
// core's Authenticator, ProfileService, and TokenIntrospector collaborators
// on top of the shared client layer, and owns the translation between the
// user service's wire shapes and the session's types.
package userapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	portalauth "github.com/powertrading/portalauth"
	"github.com/powertrading/portalauth/client"
	"github.com/powertrading/portalauth/role"
)

const (
	loginPath       = "/api/v1/users/login"
	logoutPath      = "/api/v1/users/logout"
	profilePath     = "/api/v1/users/profile"
	passwordPath    = "/api/v1/users/password"
	permissionsPath = "/api/v1/users/permissions"
	validatePath    = "/api/v1/users/validate-token"
)

// Client talks to the user service. It satisfies portalauth.Authenticator,
// portalauth.ProfileService, and portalauth.TokenIntrospector.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	http    *client.Client
	binding *client.Binding
}

// New creates a user-service client with a late-bound session. Call Attach
// once the session is built so requests carry the bearer token and a 401
// clears the session.
func New(cfg client.Config) *Client {
	binding := &client.Binding{}
	return &Client{
		http:    client.New(cfg, binding, binding.HandleUnauthorized),
		binding: binding,
	}
}

// NewWithClient wraps an already-wired service client.
func NewWithClient(c *client.Client) *Client {
	return &Client{http: c}
}

// Attach binds the session into the underlying client.
func (c *Client) Attach(session *portalauth.Session) {
	if c.binding != nil && session != nil {
		c.binding.Bind(session, session.HandleUnauthorized)
	}
}

/*
====================================
WIRE SHAPES
====================================
*/

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	Captcha  string `json:"captcha,omitempty"`
}

type loginResponse struct {
	Token       string   `json:"token"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int64    `json:"expiresIn"`
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	CompanyName string   `json:"companyName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type profileResponse struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	CompanyName   string `json:"companyName"`
	ContactName   string `json:"contactName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Department    string `json:"department"`
	Position      string `json:"position"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	CreateTime    string `json:"createTime"`
	LastLoginTime string `json:"lastLoginTime"`
}

type updateRequest struct {
	ContactName *string `json:"contactName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Department  *string `json:"department,omitempty"`
	Position    *string `json:"position,omitempty"`
}

type tokenInfoResponse struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	IssuedAt    string   `json:"issuedAt"`
	ExpiresAt   string   `json:"expiresAt"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

/*
====================================
AUTHENTICATOR
====================================
*/

// Authenticate performs the login call and converts failures into the
// session's AuthError kinds: a domain-level rejection becomes
// ErrInvalidCredentials (server message preserved), a server-side or
// connectivity failure becomes ErrServerUnavailable, and a deadline expiry
// stays ErrTimeout.
func (c *Client) Authenticate(ctx context.Context, creds portalauth.Credentials) (*portalauth.LoginResult, error) {
	var resp loginResponse
	err := c.http.Post(ctx, loginPath, loginRequest{
		Account:  creds.Account,
		Password: creds.Password,
		Captcha:  creds.Captcha,
	}, &resp)
	if err != nil {
		return nil, mapAuthError(err)
	}

	if resp.Token == "" {
		return nil, portalauth.ErrLoginResponseInvalid
	}

	return &portalauth.LoginResult{
		Token: resp.Token,
		Profile: portalauth.UserProfile{
			UserID:      resp.UserID,
			Username:    resp.Username,
			RealName:    resp.Username,
			CompanyName: resp.CompanyName,
			Role:        mapRole(resp.Role),
			Status:      portalauth.StatusActive,
			CreateTime:  time.Now().UTC().Format(time.RFC3339),
		},
		Permissions: resp.Permissions,
	}, nil
}

// Logout performs the best-effort server-side logout call.
func (c *Client) Logout(ctx context.Context) error {
	return c.http.Post(ctx, logoutPath, nil, nil)
}

func mapAuthError(err error) error {
	var be *client.BusinessError
	if errors.As(err, &be) {
		return fmt.Errorf("%w: %s", portalauth.ErrInvalidCredentials, be.Message)
	}
	switch {
	case errors.Is(err, client.ErrTimeout):
		return err
	case errors.Is(err, client.ErrServerError),
		errors.Is(err, client.ErrNetworkUnreachable),
		errors.Is(err, client.ErrNotFound):
		return fmt.Errorf("%w: %v", portalauth.ErrServerUnavailable, err)
	default:
		return err
	}
}

/*
====================================
PROFILE SERVICE
====================================
*/

// FetchProfile retrieves the full profile of the current user.
func (c *Client) FetchProfile(ctx context.Context) (*portalauth.UserProfile, error) {
	var resp profileResponse
	if err := c.http.Get(ctx, profilePath, nil, &resp); err != nil {
		return nil, err
	}

	return &portalauth.UserProfile{
		UserID:        resp.UserID,
		Username:      resp.Username,
		RealName:      resp.ContactName,
		CompanyName:   resp.CompanyName,
		Phone:         resp.Phone,
		Email:         resp.Email,
		Department:    resp.Department,
		Position:      resp.Position,
		Role:          mapRole(resp.Role),
		Status:        mapStatus(resp.Status),
		CreateTime:    resp.CreateTime,
		LastLoginTime: resp.LastLoginTime,
	}, nil
}

// UpdateProfile submits the requested changes. The user service replies
// with an empty payload on success, which means every requested field was
// accepted; the request is echoed back as the accepted set.
func (c *Client) UpdateProfile(ctx context.Context, update portalauth.ProfileUpdate) (portalauth.ProfileUpdate, error) {
	err := c.http.Put(ctx, profilePath, updateRequest{
		ContactName: update.RealName,
		Phone:       update.Phone,
		Email:       update.Email,
		Department:  update.Department,
		Position:    update.Position,
	}, nil)
	if err != nil {
		return portalauth.ProfileUpdate{}, err
	}
	return update, nil
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.http.Put(ctx, passwordPath, changePasswordRequest{
		OldPassword:     oldPassword,
		NewPassword:     newPassword,
		ConfirmPassword: newPassword,
	}, nil)
}

// FetchPermissions retrieves the current user's permission list.
func (c *Client) FetchPermissions(ctx context.Context) ([]string, error) {
	var perms []string
	if err := c.http.Get(ctx, permissionsPath, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

/*
====================================
TOKEN INTROSPECTOR
====================================
*/

// Introspect validates a token server-side. An invalid or expired token
// yields ErrUnauthenticated.
func (c *Client) Introspect(ctx context.Context, token string) (*portalauth.TokenInfo, error) {
	query := url.Values{}
	query.Set("token", token)

	var resp tokenInfoResponse
	if err := c.http.Get(ctx, validatePath, query, &resp); err != nil {
		var be *client.BusinessError
		if errors.As(err, &be) {
			return nil, fmt.Errorf("%w: %s", client.ErrUnauthenticated, be.Message)
		}
		return nil, err
	}

	roles := make([]role.Role, 0, len(resp.Roles))
	for _, r := range resp.Roles {
		roles = append(roles, mapRole(r))
	}

	info := &portalauth.TokenInfo{
		UserID:      resp.UserID,
		Username:    resp.Username,
		Roles:       roles,
		Permissions: resp.Permissions,
	}
	if t, err := time.Parse(time.RFC3339, resp.IssuedAt); err == nil {
		info.IssuedAt = t
	}
	if t, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
		info.ExpiresAt = t
	}
	return info, nil
}

/*
====================================
BACKEND VALUE MAPPING
====================================
*/

// mapRole translates backend role identifiers into platform roles. Unknown
// values degrade to the least-privileged role.
func mapRole(backend string) role.Role {
	switch backend {
	case "ADMIN", "admin":
		return role.Admin
	case "SETTLEMENT", "settlement":
		return role.Settlement
	case "TECH", "tech":
		return role.Tech
	case "USER", "consumer":
		return role.Consumer
	default:
		return role.Consumer
	}
}

// mapStatus translates backend account statuses. Unknown values are treated
// as pending review.
func mapStatus(backend string) portalauth.AccountStatus {
	switch backend {
	case "ACTIVE", "active":
		return portalauth.StatusActive
	case "LOCKED", "REJECTED", "inactive":
		return portalauth.StatusInactive
	case "PENDING", "pending":
		return portalauth.StatusPending
	default:
		return portalauth.StatusPending
	}
}

package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	portalauth "github.com/powertrading/portalauth"
	"github.com/powertrading/portalauth/client"
	"github.com/powertrading/portalauth/role"
)

func newAPITest(t *testing.T, handler http.Handler) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return New(client.Config{Name: "user", BaseURL: srv.URL}), srv.Close
}

func envelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func rejection(t *testing.T, w http.ResponseWriter, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message}); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != loginPath || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login request: %v", err)
		}
		if req.Account != "admin" || req.Password != "123456" {
			t.Errorf("credentials lost in transit: %+v", req)
		}
		envelope(t, w, loginResponse{
			Token:       "tok-1",
			UserID:      "u1",
			Username:    "admin",
			CompanyName: "Power Trading Center",
			Role:        "ADMIN",
			Permissions: []string{"system:manage"},
		})
	}))
	defer done()

	result, err := c.Authenticate(context.Background(), portalauth.Credentials{Account: "admin", Password: "123456"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if result.Token != "tok-1" {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if result.Profile.Role != role.Admin {
		t.Fatalf("expected admin role, got %q", result.Profile.Role)
	}
	if !result.Profile.Valid() {
		t.Fatalf("profile must be restorable: %+v", result.Profile)
	}
	if len(result.Permissions) != 1 || result.Permissions[0] != "system:manage" {
		t.Fatalf("permissions lost: %v", result.Permissions)
	}
}

func TestAuthenticateRejectionMapsToInvalidCredentials(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rejection(t, w, "account or password incorrect")
	}))
	defer done()

	_, err := c.Authenticate(context.Background(), portalauth.Credentials{Account: "x", Password: "y"})
	if !errors.Is(err, portalauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateServerFailureMapsToUnavailable(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer done()

	_, err := c.Authenticate(context.Background(), portalauth.Credentials{Account: "x", Password: "y"})
	if !errors.Is(err, portalauth.ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable, got %v", err)
	}
}

func TestAuthenticateUnreachableBackendMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := New(client.Config{Name: "user", BaseURL: addr})
	_, err := c.Authenticate(context.Background(), portalauth.Credentials{Account: "x", Password: "y"})
	if !errors.Is(err, portalauth.ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable, got %v", err)
	}
}

func TestAuthenticateEmptyTokenRejected(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, loginResponse{UserID: "u1", Username: "admin"})
	}))
	defer done()

	_, err := c.Authenticate(context.Background(), portalauth.Credentials{Account: "x", Password: "y"})
	if !errors.Is(err, portalauth.ErrLoginResponseInvalid) {
		t.Fatalf("expected ErrLoginResponseInvalid, got %v", err)
	}
}

func TestFetchProfileMapsWireShape(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, profileResponse{
			UserID:      "u1",
			Username:    "alice",
			ContactName: "Alice Zhang",
			CompanyName: "Grid East",
			Role:        "SETTLEMENT",
			Status:      "ACTIVE",
		})
	}))
	defer done()

	p, err := c.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if p.RealName != "Alice Zhang" {
		t.Fatalf("contact name must map to real name, got %q", p.RealName)
	}
	if p.Role != role.Settlement {
		t.Fatalf("expected settlement role, got %q", p.Role)
	}
	if p.Status != portalauth.StatusActive {
		t.Fatalf("expected active status, got %q", p.Status)
	}
}

func TestUpdateProfileEchoesAcceptedFields(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		envelope(t, w, nil)
	}))
	defer done()

	phone := "13800000000"
	accepted, err := c.UpdateProfile(context.Background(), portalauth.ProfileUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if accepted.Phone == nil || *accepted.Phone != phone {
		t.Fatalf("expected phone echoed as accepted, got %+v", accepted)
	}
	if accepted.Email != nil {
		t.Fatal("unrequested fields must come back nil")
	}
}

func TestIntrospectValidToken(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "tok-1" {
			t.Errorf("token query lost: %q", got)
		}
		envelope(t, w, tokenInfoResponse{
			UserID:    "u1",
			Username:  "alice",
			Roles:     []string{"TECH"},
			ExpiresAt: "2027-01-01T00:00:00Z",
		})
	}))
	defer done()

	info, err := c.Introspect(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if len(info.Roles) != 1 || info.Roles[0] != role.Tech {
		t.Fatalf("roles lost: %v", info.Roles)
	}
	if info.ExpiresAt.IsZero() {
		t.Fatal("expected a parsed expiry")
	}
}

func TestIntrospectRejectionMapsToUnauthenticated(t *testing.T) {
	c, done := newAPITest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rejection(t, w, "token expired")
	}))
	defer done()

	_, err := c.Introspect(context.Background(), "tok-dead")
	if !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestMapRole(t *testing.T) {
	cases := map[string]role.Role{
		"ADMIN":      role.Admin,
		"admin":      role.Admin,
		"SETTLEMENT": role.Settlement,
		"TECH":       role.Tech,
		"USER":       role.Consumer,
		"consumer":   role.Consumer,
		"whatever":   role.Consumer,
	}
	for backend, want := range cases {
		if got := mapRole(backend); got != want {
			t.Fatalf("mapRole(%q) = %q, want %q", backend, got, want)
		}
	}
}

func TestMapStatus(t *testing.T) {
	cases := map[string]portalauth.AccountStatus{
		"ACTIVE":   portalauth.StatusActive,
		"LOCKED":   portalauth.StatusInactive,
		"REJECTED": portalauth.StatusInactive,
		"PENDING":  portalauth.StatusPending,
		"whatever": portalauth.StatusPending,
	}
	for backend, want := range cases {
		if got := mapStatus(backend); got != want {
			t.Fatalf("mapStatus(%q) = %q, want %q", backend, got, want)
		}
	}
}

package portalauth

import (
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
session:
  redis_prefix: "portal:test"
  persist_ttl: "24h"
guard:
  login_path: "/signin"
  redirect_param: "back"
audit:
  enabled: true
  buffer_size: 128
  drop_if_full: true
metrics:
  enabled: true
services:
  user:
    base_url: "http://user-service:8081"
    timeout: "10s"
  approval:
    base_url: "http://approval-service:8083"
    timeout: "15s"
    send_identity: true
`

func TestLoadConfig(t *testing.T) {
	cfg, services, err := LoadConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Session.RedisPrefix != "portal:test" {
		t.Fatalf("unexpected prefix %q", cfg.Session.RedisPrefix)
	}
	if cfg.Session.PersistTTL != 24*time.Hour {
		t.Fatalf("unexpected TTL %v", cfg.Session.PersistTTL)
	}
	if cfg.Guard.LoginPath != "/signin" || cfg.Guard.RedirectParam != "back" {
		t.Fatalf("guard overrides lost: %+v", cfg.Guard)
	}
	if cfg.Guard.ForbiddenPath != "/403" {
		t.Fatalf("expected default forbidden path, got %q", cfg.Guard.ForbiddenPath)
	}
	if !cfg.Audit.Enabled || cfg.Audit.BufferSize != 128 || !cfg.Audit.DropIfFull {
		t.Fatalf("audit settings lost: %+v", cfg.Audit)
	}

	user, ok := services["user"]
	if !ok {
		t.Fatal("expected a user service entry")
	}
	if user.BaseURL != "http://user-service:8081" || user.Timeout != 10*time.Second {
		t.Fatalf("user service settings lost: %+v", user)
	}
	if user.SendIdentity {
		t.Fatal("user service must not send the identity header")
	}

	approval := services["approval"]
	if !approval.SendIdentity || approval.Timeout != 15*time.Second {
		t.Fatalf("approval service settings lost: %+v", approval)
	}
}

func TestLoadConfigRequiresServiceBaseURL(t *testing.T) {
	_, _, err := LoadConfig(strings.NewReader(`
services:
  user:
    timeout: "10s"
`))
	if err == nil {
		t.Fatal("expected error for a service without base_url")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	_, _, err := LoadConfig(strings.NewReader(`
session:
  persist_ttl: "soon"
`))
	if err == nil {
		t.Fatal("expected error for an unparsable duration")
	}
}

func TestLoadConfigEmptyInputYieldsDefaults(t *testing.T) {
	cfg, services, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Session.RedisPrefix != "portal:session" {
		t.Fatalf("expected default prefix, got %q", cfg.Session.RedisPrefix)
	}
	if len(services) != 0 {
		t.Fatalf("expected no services, got %v", services)
	}
}

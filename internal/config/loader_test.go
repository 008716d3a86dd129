// internal/config/loader_test.go
package config

import (
	"context"
	"strings"
	"testing"
)

type stubResolver map[string]string

func (s stubResolver) Resolve(_ context.Context, ref string) (string, error) {
	return s[ref], nil
}

func TestApplyDefaults(t *testing.T) {
	var c Config
	applyDefaults(&c)

	if c.Storage.MaxUploadBytes != 35_000_000 {
		t.Fatalf("MaxUploadBytes = %d", c.Storage.MaxUploadBytes)
	}
	if c.Limits.PerKind != 2 {
		t.Fatalf("PerKind = %d", c.Limits.PerKind)
	}
	if c.Auth.TokenTTLMinutes != 30 {
		t.Fatalf("TokenTTLMinutes = %d", c.Auth.TokenTTLMinutes)
	}
	if c.DNS.TimeoutSeconds != 15 {
		t.Fatalf("TimeoutSeconds = %d", c.DNS.TimeoutSeconds)
	}
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	c := Config{Limits: Limits{PerKind: 5}}
	applyDefaults(&c)
	if c.Limits.PerKind != 5 {
		t.Fatalf("PerKind = %d, want 5", c.Limits.PerKind)
	}
}

func TestResolveSecrets(t *testing.T) {
	c := Config{
		Database: Database{Password: "vault:secret/sriox/db#password"},
		DNS:      DNS{APIToken: "plain-token"},
		Auth:     Auth{JWTSecret: "vault:secret/sriox/auth#jwt"},
	}
	r := stubResolver{
		"vault:secret/sriox/db#password": "s3cr3t",
		"vault:secret/sriox/auth#jwt":    "signing-key-material",
	}
	if err := resolveSecrets(context.Background(), r, &c); err != nil {
		t.Fatalf("resolveSecrets: %v", err)
	}
	if c.Database.Password != "s3cr3t" {
		t.Fatalf("Password = %q", c.Database.Password)
	}
	if c.DNS.APIToken != "plain-token" {
		t.Fatalf("APIToken = %q, plain values must pass through", c.DNS.APIToken)
	}
	if c.Auth.JWTSecret != "signing-key-material" {
		t.Fatalf("JWTSecret = %q", c.Auth.JWTSecret)
	}
}

func TestResolveSecrets_RefWithoutResolver(t *testing.T) {
	c := Config{Database: Database{Password: "vault:secret/sriox/db#password"}}
	err := resolveSecrets(context.Background(), nil, &c)
	if err == nil || !strings.Contains(err.Error(), "vault reference") {
		t.Fatalf("err = %v, want vault-reference error", err)
	}
}

func TestValidateStruct(t *testing.T) {
	c := Config{
		HTTP:     HTTP{ListenAddr: ":8080"},
		Platform: Platform{Domain: "sriox.com", ServerIP: "203.0.113.7"},
		Database: Database{DSN: "sriox:%s@tcp(localhost:3306)/sriox?parseTime=true", Password: "pw"},
		DNS:      DNS{APIToken: "tok", ZoneID: "0123456789abcdef0123456789abcdef"},
		Storage:  Storage{SitesDir: "/srv/sites", RedirectsDir: "/srv/redirects", UploadsDir: "/srv/uploads", MaxUploadBytes: 35_000_000},
		Auth:     Auth{JWTSecret: "0123456789abcdef", TokenTTLMinutes: 30},
		Limits:   Limits{PerKind: 2},
	}
	if err := validateStruct(&c); err != nil {
		t.Fatalf("validateStruct: %v", err)
	}

	c.Platform.ServerIP = "not-an-ip"
	if err := validateStruct(&c); err == nil {
		t.Fatal("expected validation failure for bad server_ip")
	}
}

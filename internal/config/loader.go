// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `SRIOX_`, where `__` maps to “.”
     (e.g., `SRIOX_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
secret fields carrying `vault:` references are resolved, defaults are
applied, the result is validated, enriched with the runtime root path,
and cached in an `atomic.Pointer` for lock-free reads.  `Reload()` simply
calls `Load()` again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// SecretResolver turns a `vault:mount/path#key` reference into its plain
// value.  internal/vault.Client satisfies it; tests use a stub.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SRIOX_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("SRIOX_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, and env overrides without Vault resolution.  Use
// LoadWithSecrets when any field may carry a `vault:` reference.
func Load() (*Config, error) {
	return LoadWithSecrets(context.Background(), nil)
}

// LoadWithSecrets reads all layers, resolves `vault:` references through
// resolver (when non-nil), applies defaults, validates, and caches Config.
func LoadWithSecrets(ctx context.Context, resolver SecretResolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: SRIOX_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("SRIOX_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "SRIOX_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)

	if err := resolveSecrets(ctx, resolver, &cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"domain", cfg.Platform.Domain,
		"quota_per_kind", cfg.Limits.PerKind,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func applyDefaults(c *Config) {
	if c.Storage.MaxUploadBytes == 0 {
		c.Storage.MaxUploadBytes = 35_000_000
	}
	if c.Limits.PerKind == 0 {
		c.Limits.PerKind = 2
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 30
	}
	if c.DNS.TimeoutSeconds == 0 {
		c.DNS.TimeoutSeconds = 15
	}
}

// resolveSecrets replaces `vault:` references in the known secret fields.
// A reference with no resolver configured is a hard error; better to fail
// boot than to pass a literal "vault:…" string to MySQL or Cloudflare.
func resolveSecrets(ctx context.Context, r SecretResolver, c *Config) error {
	for _, f := range []*string{
		&c.Database.Password,
		&c.DNS.APIToken,
		&c.Auth.JWTSecret,
	} {
		val, err := resolveOne(ctx, r, *f)
		if err != nil {
			return err
		}
		*f = val
	}
	return nil
}

func resolveOne(ctx context.Context, r SecretResolver, val string) (string, error) {
	if !strings.HasPrefix(val, "vault:") {
		return val, nil
	}
	if r == nil {
		return "", fmt.Errorf("config value %q is a vault reference but no vault client is configured", val)
	}
	return r.Resolve(ctx, val)
}

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }

// internal/config/model.go
//
// Typed configuration model for Sriox.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `SRIOX_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the app
// never sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Platform section
//

// Platform identifies the apex domain resources are provisioned under and
// the host every website A record must point at.
type Platform struct {
	Domain   string `koanf:"domain"    validate:"required,fqdn"`
	ServerIP string `koanf:"server_ip" validate:"required,ip"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault.  The *secret* portion
// (`Password`) may be a `vault:` reference resolved at load time, keeping
// credentials out of flat files and git history.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// DNS section
//

// DNS configures the Cloudflare zone all subdomain records live in.
// APIToken may be a `vault:` reference.
type DNS struct {
	APIToken       string `koanf:"api_token" validate:"required"`
	ZoneID         string `koanf:"zone_id"   validate:"required,len=32"`
	Proxied        bool   `koanf:"proxied"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

//
// Storage section
//

// Storage locates the on-disk artifact roots and bounds upload size.
// GeoIPDB is optional; when empty, request geolocation is disabled.
type Storage struct {
	SitesDir       string `koanf:"sites_dir"     validate:"required"`
	RedirectsDir   string `koanf:"redirects_dir" validate:"required"`
	UploadsDir     string `koanf:"uploads_dir"   validate:"required"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes" validate:"required,gt=0"`
	GeoIPDB        string `koanf:"geoip_db"`
}

//
// Auth section
//

// Auth holds bearer-token signing material.  JWTSecret may be a `vault:`
// reference.
type Auth struct {
	JWTSecret       string `koanf:"jwt_secret" validate:"required,min=16"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes" validate:"required,gt=0"`
}

//
// Limits section
//

// Limits sets per-account provisioning quotas.
type Limits struct {
	PerKind int `koanf:"per_kind" validate:"required,gt=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or SRIOX_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // SRIOX_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Platform Platform `koanf:"platform"`
	Database Database `koanf:"database"`
	DNS      DNS      `koanf:"dns"`
	Storage  Storage  `koanf:"storage"`
	Auth     Auth     `koanf:"auth"`
	Limits   Limits   `koanf:"limits"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

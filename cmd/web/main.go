// cmd/web/main.go
//
// Sriox platform – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Optional Vault client (only when VAULT_ADDR is set), used to
//     resolve `vault:` references in the config tree.
//
//  2. Load layered config (.env → conf/global.yaml → SRIOX_ env).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Open the control-plane DB and log the live resource counts.
//
//  5. Construct the provisioning collaborators: Cloudflare DNS client,
//     zip extractor, redirect-page writer, resource and account stores.
//
//  6. Assemble the chi router (JSON API + /metrics + /healthz), wrap it
//     in the hardened http.Server, and serve until SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cloudflare "github.com/cloudflare/cloudflare-go"
	"golang.org/x/sync/errgroup"

	"github.com/sriox/platform/internal/account"
	"github.com/sriox/platform/internal/archive"
	"github.com/sriox/platform/internal/config"
	"github.com/sriox/platform/internal/database"
	"github.com/sriox/platform/internal/dns"
	"github.com/sriox/platform/internal/logger"
	"github.com/sriox/platform/internal/middleware"
	"github.com/sriox/platform/internal/pages"
	"github.com/sriox/platform/internal/provision"
	"github.com/sriox/platform/internal/requestinfo"
	"github.com/sriox/platform/internal/resource"
	"github.com/sriox/platform/internal/server"
	"github.com/sriox/platform/internal/vault"
	"github.com/sriox/platform/internal/web"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Vault (optional) and config ────────────────────────────────
	//
	var resolver config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New(ctx, log.Printf)
		if err != nil {
			log.Fatalf("vault client: %v", err)
		}
		resolver = cli
	}

	cfg, err := config.LoadWithSecrets(ctx, resolver)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	//
	// ── 2.  Control-plane DB ───────────────────────────────────────────
	//
	db, err := database.Open(database.BuildDSN(cfg.Database.DSN, cfg.Database.Password))
	if err != nil {
		logOut.Fatalf("connect DB: %v", err)
	}
	defer db.Close()
	logOut.Infow("control-plane DB online")

	// Log live resource counts as an early sanity check.
	for _, table := range []string{"website", "redirect", "github_mapping"} {
		var n int
		if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err == nil {
			logOut.Infow("live resources", "kind", table, "count", n)
		}
	}

	//
	// ── 3.  Optional GeoIP enrichment ──────────────────────────────────
	//
	if cfg.Storage.GeoIPDB != "" {
		if err := requestinfo.InitGeo(cfg.Storage.GeoIPDB); err != nil {
			logOut.Warnw("geoip disabled", "path", cfg.Storage.GeoIPDB, "err", err)
		}
	}

	//
	// ── 4.  Provisioning collaborators ─────────────────────────────────
	//
	dnsClient, err := dns.New(cfg.DNS.APIToken, cfg.DNS.ZoneID, cfg.Platform.Domain,
		cfg.DNS.Proxied, logOut,
		cloudflare.HTTPClient(&http.Client{
			Timeout: time.Duration(cfg.DNS.TimeoutSeconds) * time.Second,
		}))
	if err != nil {
		logOut.Fatalf("cloudflare client: %v", err)
	}

	extractor, err := archive.New(cfg.Storage.SitesDir)
	if err != nil {
		logOut.Fatalf("site storage: %v", err)
	}
	pageWriter, err := pages.NewWriter(cfg.Storage.RedirectsDir, cfg.Platform.Domain)
	if err != nil {
		logOut.Fatalf("redirect storage: %v", err)
	}
	if err := os.MkdirAll(cfg.Storage.UploadsDir, 0o755); err != nil {
		logOut.Fatalf("upload spool dir: %v", err)
	}

	store := resource.NewStore(db, cfg.Limits.PerKind)
	prov := provision.New(store, dnsClient, extractor, pageWriter, provision.Settings{
		Domain:         cfg.Platform.Domain,
		ServerIP:       cfg.Platform.ServerIP,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		Quota:          cfg.Limits.PerKind,
	}, logOut)

	accounts := account.NewService(account.NewStore(db), []byte(cfg.Auth.JWTSecret),
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute, logOut)

	//
	// ── 5.  Router and server ──────────────────────────────────────────
	//
	handler := web.NewHandler(prov, accounts, cfg.Storage.UploadsDir, logOut)
	root := http.Handler(web.NewRouter(handler, logOut))
	if cfg.HTTP.ForceHTTPS {
		root = middleware.ForceHTTPS(root)
	}

	srv := server.New(cfg.HTTP.ListenAddr, root)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr, "domain", cfg.Platform.Domain)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Infow("shutdown complete")
}

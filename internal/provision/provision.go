// internal/provision/provision.go
//
// Provisioning orchestrator: the cross-system consistency core.
//
// Context
// -------
// Every create, update, and delete must keep three independently failing
// resources in step: the control-plane row, a filesystem artifact (site
// folder or redirect page), and a DNS record owned by a remote provider.
// No transaction spans all three, so each operation runs as a short-lived
// workflow of ordered steps that accumulates an explicit stack of applied
// side effects and unwinds it in reverse when a later step fails (see
// workflow.go).
//
// Ordering discipline
// -------------------
//   - Validation and quota run first and never cause side effects.
//   - Create: side effects first, row insert last.  A failed insert (for
//     example a uniqueness race lost at the index) triggers best-effort
//     removal of everything applied so far, then surfaces the original
//     error.
//   - Delete: side-effect cleanup is attempted first but its failure
//     never blocks the row delete.  A user must always be able to free a
//     quota slot even when the provider is down, at the cost of a logged
//     orphan.
//
// The orchestrator holds its collaborators behind small interfaces so the
// workflow logic is testable with fakes; production wiring injects the
// sqlx store, the Cloudflare client, the zip extractor, and the page
// writer from cmd/web.
package provision

import (
	"context"

	"go.uber.org/zap"

	"github.com/sriox/platform/internal/dns"
	"github.com/sriox/platform/internal/resource"
)

// Store is the resource persistence surface the orchestrator consumes.
// *resource.Store satisfies it.
type Store interface {
	CountWebsites(ctx context.Context, accountID int64) (int, error)
	ListWebsites(ctx context.Context, accountID int64) ([]resource.Website, error)
	WebsiteByID(ctx context.Context, id, accountID int64) (*resource.Website, error)
	WebsiteBySubdomain(ctx context.Context, subdomain string) (*resource.Website, error)
	CreateWebsite(ctx context.Context, w *resource.Website) error
	UpdateWebsite(ctx context.Context, w *resource.Website) error
	DeleteWebsite(ctx context.Context, id, accountID int64) error

	CountRedirects(ctx context.Context, accountID int64) (int, error)
	ListRedirects(ctx context.Context, accountID int64) ([]resource.Redirect, error)
	RedirectByID(ctx context.Context, id, accountID int64) (*resource.Redirect, error)
	RedirectByName(ctx context.Context, name string) (*resource.Redirect, error)
	CreateRedirect(ctx context.Context, r *resource.Redirect) error
	UpdateRedirect(ctx context.Context, r *resource.Redirect) error
	DeleteRedirect(ctx context.Context, id, accountID int64) error

	CountGitHubMappings(ctx context.Context, accountID int64) (int, error)
	ListGitHubMappings(ctx context.Context, accountID int64) ([]resource.GitHubMapping, error)
	GitHubMappingByID(ctx context.Context, id, accountID int64) (*resource.GitHubMapping, error)
	GitHubMappingBySubdomain(ctx context.Context, subdomain string) (*resource.GitHubMapping, error)
	CreateGitHubMapping(ctx context.Context, m *resource.GitHubMapping) error
	UpdateGitHubMapping(ctx context.Context, m *resource.GitHubMapping) error
	DeleteGitHubMapping(ctx context.Context, id, accountID int64) error
}

// DNSProvider creates and deletes records in the platform zone.
// *dns.Client satisfies it.
type DNSProvider interface {
	CreateRecord(ctx context.Context, name, rtype, content string) (*dns.Record, error)
	DeleteRecord(ctx context.Context, name string) error
}

// SiteFiles manages extracted site folders.  *archive.Extractor satisfies
// it.
type SiteFiles interface {
	Extract(archivePath, target string) (string, error)
	Delete(target string) bool
	Rename(oldTarget, newTarget string) error
	RelPath(target string) string
}

// RedirectPages manages generated redirect pages.  *pages.Writer
// satisfies it.
type RedirectPages interface {
	Write(name, target string) error
	Remove(name string) error
}

// Settings carries the handful of platform constants workflows need.
type Settings struct {
	Domain         string // apex domain, e.g. "sriox.com"
	ServerIP       string // A-record content for hosted websites
	MaxUploadBytes int64  // upload ceiling enforced before extraction
	Quota          int    // max live resources per account and kind
}

// Service coordinates validator, extractor, DNS client, and store.
// Construct once at boot with New and share; all methods are safe for
// concurrent use because every workflow is request-local.
type Service struct {
	store Store
	dns   DNSProvider
	sites SiteFiles
	pages RedirectPages
	cfg   Settings
	log   *zap.SugaredLogger
}

// New wires a Service.  All collaborators are required.
func New(store Store, provider DNSProvider, sites SiteFiles, pages RedirectPages,
	cfg Settings, log *zap.SugaredLogger) *Service {
	return &Service{
		store: store,
		dns:   provider,
		sites: sites,
		pages: pages,
		cfg:   cfg,
		log:   log,
	}
}

// MaxUploadBytes returns the configured upload ceiling.
func (s *Service) MaxUploadBytes() int64 { return s.cfg.MaxUploadBytes }

// Quota returns the per-kind resource ceiling.
func (s *Service) Quota() int { return s.cfg.Quota }

// WebsiteURL computes the public URL for a hosted website.
func (s *Service) WebsiteURL(subdomain string) string {
	return "https://" + subdomain + "." + s.cfg.Domain
}

// RedirectURL computes the public URL for a short link.
func (s *Service) RedirectURL(name string) string {
	return "https://" + s.cfg.Domain + "/" + name
}

// Dashboard aggregates an account's resources and counts in one call.
type Dashboard struct {
	Websites       []resource.Website       `json:"websites"`
	Redirects      []resource.Redirect      `json:"redirects"`
	GitHubMappings []resource.GitHubMapping `json:"github_mappings"`
	MaxAllowed     int                      `json:"max_allowed"`
}

// DashboardFor returns everything the account owns.
func (s *Service) DashboardFor(ctx context.Context, accountID int64) (*Dashboard, error) {
	sites, err := s.store.ListWebsites(ctx, accountID)
	if err != nil {
		return nil, err
	}
	redirects, err := s.store.ListRedirects(ctx, accountID)
	if err != nil {
		return nil, err
	}
	mappings, err := s.store.ListGitHubMappings(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Websites:       sites,
		Redirects:      redirects,
		GitHubMappings: mappings,
		MaxAllowed:     s.cfg.Quota,
	}, nil
}

/*──────────────────────────── pass-throughs ───────────────────────────────*/

// The list and count reads below exist so the HTTP layer depends only on
// the Service, never on the store directly.

func (s *Service) ListWebsites(ctx context.Context, accountID int64) ([]resource.Website, error) {
	return s.store.ListWebsites(ctx, accountID)
}

func (s *Service) CountWebsites(ctx context.Context, accountID int64) (int, error) {
	return s.store.CountWebsites(ctx, accountID)
}

func (s *Service) ListRedirects(ctx context.Context, accountID int64) ([]resource.Redirect, error) {
	return s.store.ListRedirects(ctx, accountID)
}

func (s *Service) CountRedirects(ctx context.Context, accountID int64) (int, error) {
	return s.store.CountRedirects(ctx, accountID)
}

func (s *Service) ListGitHubMappings(ctx context.Context, accountID int64) ([]resource.GitHubMapping, error) {
	return s.store.ListGitHubMappings(ctx, accountID)
}

func (s *Service) CountGitHubMappings(ctx context.Context, accountID int64) (int, error) {
	return s.store.CountGitHubMappings(ctx, accountID)
}

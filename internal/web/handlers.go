// internal/web/handlers.go
//
// JSON API handlers.
//
// Context
// -------
// Handlers stay thin: decode the envelope, pull the account ID from the
// request context, call the service, and map the result through
// respond.go.  All provisioning decisions (validation, quotas,
// uniqueness, compensation) live in internal/provision.
//
// Uploads arrive as multipart forms with a `subdomain` field and a `file`
// part.  The zip is spooled to a temp file first; the extractor consumes
// it on success, and the deferred remove mops up on failure.
package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sriox/platform/internal/account"
	"github.com/sriox/platform/internal/auth"
	"github.com/sriox/platform/internal/provision"
	"github.com/sriox/platform/internal/resource"
)

// Provisioner is the orchestrator surface the API consumes.
// *provision.Service satisfies it.
type Provisioner interface {
	CreateWebsite(ctx context.Context, accountID int64, subdomain, archivePath string, size int64) (*resource.Website, error)
	UpdateWebsite(ctx context.Context, accountID, id int64, subdomain string) (*resource.Website, error)
	DeleteWebsite(ctx context.Context, accountID, id int64) error
	ListWebsites(ctx context.Context, accountID int64) ([]resource.Website, error)
	CountWebsites(ctx context.Context, accountID int64) (int, error)

	CreateRedirect(ctx context.Context, accountID int64, name, targetURL string) (*resource.Redirect, error)
	UpdateRedirect(ctx context.Context, accountID, id int64, name, targetURL string) (*resource.Redirect, error)
	DeleteRedirect(ctx context.Context, accountID, id int64) error
	ListRedirects(ctx context.Context, accountID int64) ([]resource.Redirect, error)
	CountRedirects(ctx context.Context, accountID int64) (int, error)

	CreateGitHubMapping(ctx context.Context, accountID int64, subdomain, repoOwner, repoName string) (*resource.GitHubMapping, error)
	UpdateGitHubMapping(ctx context.Context, accountID, id int64, subdomain, repoOwner, repoName string) (*resource.GitHubMapping, error)
	DeleteGitHubMapping(ctx context.Context, accountID, id int64) error
	ListGitHubMappings(ctx context.Context, accountID int64) ([]resource.GitHubMapping, error)
	CountGitHubMappings(ctx context.Context, accountID int64) (int, error)

	DashboardFor(ctx context.Context, accountID int64) (*provision.Dashboard, error)
	WebsiteURL(subdomain string) string
	RedirectURL(name string) string
	MaxUploadBytes() int64
	Quota() int
}

// Accounts is the identity surface the API consumes.  *account.Service
// satisfies it.
type Accounts interface {
	Signup(ctx context.Context, username, email, password string) (*account.Account, error)
	Authenticate(ctx context.Context, username, password string) (*account.Account, error)
	ByID(ctx context.Context, id int64) (*account.Account, error)
	IssueToken(a *account.Account) (string, error)
	VerifyToken(raw string) (int64, error)
}

// Handler bundles the API dependencies.
type Handler struct {
	prov      Provisioner
	accounts  Accounts
	uploadDir string
	log       *zap.SugaredLogger
}

// NewHandler wires the API handlers.  uploadDir receives spooled zip
// uploads; it must exist and be writable.
func NewHandler(prov Provisioner, accounts Accounts, uploadDir string, log *zap.SugaredLogger) *Handler {
	return &Handler{prov: prov, accounts: accounts, uploadDir: uploadDir, log: log}
}

/*──────────────────────────── response shapes ─────────────────────────────*/

type websiteResponse struct {
	resource.Website
	URL string `json:"url"`
}

type redirectResponse struct {
	resource.Redirect
	URL string `json:"url"`
}

type mappingResponse struct {
	resource.GitHubMapping
	URL string `json:"url"`
}

func (h *Handler) websiteOut(w *resource.Website) websiteResponse {
	return websiteResponse{Website: *w, URL: h.prov.WebsiteURL(w.Subdomain)}
}

func (h *Handler) redirectOut(r *resource.Redirect) redirectResponse {
	return redirectResponse{Redirect: *r, URL: h.prov.RedirectURL(r.Name)}
}

func (h *Handler) mappingOut(m *resource.GitHubMapping) mappingResponse {
	return mappingResponse{GitHubMapping: *m, URL: h.prov.WebsiteURL(m.Subdomain)}
}

/*──────────────────────────── account routes ──────────────────────────────*/

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	a, err := h.accounts.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string           `json:"token"`
	Account *account.Account `json:"account"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	a, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	tok, err := h.accounts.IssueToken(a)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, Account: a})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	a, err := h.accounts.ByID(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	d, err := h.prov.DashboardFor(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

/*──────────────────────────── website routes ──────────────────────────────*/

func (h *Handler) listWebsites(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	sites, err := h.prov.ListWebsites(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out := make([]websiteResponse, 0, len(sites))
	for i := range sites {
		out = append(out, h.websiteOut(&sites[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type countResponse struct {
	Count      int `json:"count"`
	MaxAllowed int `json:"max_allowed"`
}

func (h *Handler) countWebsites(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	n, err := h.prov.CountWebsites(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n, MaxAllowed: h.prov.Quota()})
}

func (h *Handler) createWebsite(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())

	// Cap the whole request body a little above the upload ceiling so the
	// multipart overhead never trips legitimate maximum-size uploads.
	r.Body = http.MaxBytesReader(w, r.Body, h.prov.MaxUploadBytes()+1<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, h.log, provision.ErrUploadTooLarge)
		return
	}
	subdomain := r.FormValue("subdomain")

	part, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "Missing zip file part.")
		return
	}
	defer part.Close()

	tmp, err := os.CreateTemp(h.uploadDir, "upload-*.zip")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op when the extractor already consumed it

	size, err := io.Copy(tmp, part)
	tmp.Close()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if header.Size > 0 {
		size = header.Size
	}

	web, err := h.prov.CreateWebsite(r.Context(), id, subdomain, tmpName, size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.websiteOut(web))
}

type updateWebsiteRequest struct {
	Subdomain string `json:"subdomain"`
}

func (h *Handler) updateWebsite(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.UserID(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	web, err := h.prov.UpdateWebsite(r.Context(), accountID, id, req.Subdomain)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.websiteOut(web))
}

func (h *Handler) deleteWebsite(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.UserID(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.prov.DeleteWebsite(r.Context(), accountID, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/*──────────────────────────── redirect routes ─────────────────────────────*/

type redirectRequest struct {
	Name      string `json:"name"`
	TargetURL string `json:"target_url"`
}

func (h *Handler) listRedirects(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	reds, err := h.prov.ListRedirects(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out := make([]redirectResponse, 0, len(reds))
	for i := range reds {
		out = append(out, h.redirectOut(&reds[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) countRedirects(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	n, err := h.prov.CountRedirects(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n, MaxAllowed: h.prov.Quota()})
}

func (h *Handler) createRedirect(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	var req redirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	red, err := h.prov.CreateRedirect(r.Context(), id, req.Name, req.TargetURL)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.redirectOut(red))
}

func (h *Handler) updateRedirect(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.UserID(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req redirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	red, err := h.prov.UpdateRedirect(r.Context(), accountID, id, req.Name, req.TargetURL)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.redirectOut(red))
}

func (h *Handler) deleteRedirect(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.UserID(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.prov.DeleteRedirect(r.Context(), accountID, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/*──────────────────────────── mapping routes ──────────────────────────────*/

type mappingRequest struct {
	Subdomain string `json:"subdomain"`
	RepoOwner string `json:"github_username"`
	RepoName  string `json:"repository_name"`
}

func (h *Handler) listMappings(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	maps, err := h.prov.ListGitHubMappings(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out := make([]mappingResponse, 0, len(maps))
	for i := range maps {
		out = append(out, h.mappingOut(&maps[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) countMappings(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	n, err := h.prov.CountGitHubMappings(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n, MaxAllowed: h.prov.Quota()})
}

func (h *Handler) createMapping(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	m, err := h.prov.CreateGitHubMapping(r.Context(), id, req.Subdomain, req.RepoOwner, req.RepoName)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.mappingOut(m))
}

func (h *Handler) updateMapping(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.UserID(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Malformed JSON body.")
		return
	}
	m, err := h.prov.UpdateGitHubMapping(r.Context(), accountID, id, req.Subdomain, req.RepoOwner, req.RepoName)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.mappingOut(m))
}

func (h *Handler) deleteMapping(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.UserID(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.prov.DeleteGitHubMapping(r.Context(), accountID, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/*──────────────────────────────── helpers ─────────────────────────────────*/

// pathID parses the {id} route parameter, writing a 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "Invalid resource ID.")
		return 0, false
	}
	return id, true
}

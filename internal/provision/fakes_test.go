// internal/provision/fakes_test.go
//
// In-memory fakes for the orchestrator's collaborators.  Each fake keeps
// a call log so tests can assert not only outcomes but also that certain
// steps never ran (e.g., no DNS call after a quota rejection).

package provision

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sriox/platform/internal/dns"
	"github.com/sriox/platform/internal/resource"
)

/*────────────────────────────────── DNS ───────────────────────────────────*/

type fakeDNS struct {
	records    map[string]dns.Record
	failCreate map[string]error // name → forced error
	failDelete map[string]error
	creates    []string
	deletes    []string
}

func newFakeDNS() *fakeDNS {
	return &fakeDNS{
		records:    map[string]dns.Record{},
		failCreate: map[string]error{},
		failDelete: map[string]error{},
	}
}

func (f *fakeDNS) CreateRecord(_ context.Context, name, rtype, content string) (*dns.Record, error) {
	f.creates = append(f.creates, name)
	if err, ok := f.failCreate[name]; ok {
		return nil, err
	}
	rec := dns.Record{ID: "rec-" + name, Type: rtype, Name: name, Content: content}
	f.records[name] = rec
	return &rec, nil
}

func (f *fakeDNS) DeleteRecord(_ context.Context, name string) error {
	f.deletes = append(f.deletes, name)
	if err, ok := f.failDelete[name]; ok {
		return err
	}
	if _, ok := f.records[name]; !ok {
		return dns.ErrRecordNotFound
	}
	delete(f.records, name)
	return nil
}

func (f *fakeDNS) has(name string) bool {
	_, ok := f.records[name]
	return ok
}

/*──────────────────────────────── site files ──────────────────────────────*/

type fakeSites struct {
	folders     map[string]bool
	failExtract error
	failRename  error
	extracts    []string
}

func newFakeSites() *fakeSites { return &fakeSites{folders: map[string]bool{}} }

func (f *fakeSites) Extract(_ string, target string) (string, error) {
	f.extracts = append(f.extracts, target)
	if f.failExtract != nil {
		return "", f.failExtract
	}
	f.folders[target] = true
	return f.RelPath(target), nil
}

func (f *fakeSites) Delete(target string) bool {
	if !f.folders[target] {
		return false
	}
	delete(f.folders, target)
	return true
}

func (f *fakeSites) Rename(oldTarget, newTarget string) error {
	if f.failRename != nil {
		return f.failRename
	}
	if f.folders[oldTarget] {
		delete(f.folders, oldTarget)
		f.folders[newTarget] = true
	}
	return nil
}

func (f *fakeSites) RelPath(target string) string {
	return filepath.Join("sites", target)
}

/*─────────────────────────────── page writer ──────────────────────────────*/

type fakePages struct {
	files     map[string]string // name → target URL
	failWrite error
}

func newFakePages() *fakePages { return &fakePages{files: map[string]string{}} }

func (f *fakePages) Write(name, target string) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.files[name] = target
	return nil
}

func (f *fakePages) Remove(name string) error {
	delete(f.files, name)
	return nil
}

/*────────────────────────────────── store ─────────────────────────────────*/

type fakeStore struct {
	websites  map[int64]*resource.Website
	redirects map[int64]*resource.Redirect
	mappings  map[int64]*resource.GitHubMapping
	nextID    int64

	failCreateWebsite  error
	failUpdateWebsite  error
	failCreateRedirect error
	failUpdateRedirect error
	failCreateMapping  error
	failUpdateMapping  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		websites:  map[int64]*resource.Website{},
		redirects: map[int64]*resource.Redirect{},
		mappings:  map[int64]*resource.GitHubMapping{},
	}
}

func (f *fakeStore) id() int64 { f.nextID++; return f.nextID }

func (f *fakeStore) CountWebsites(_ context.Context, accountID int64) (int, error) {
	n := 0
	for _, w := range f.websites {
		if w.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListWebsites(_ context.Context, accountID int64) ([]resource.Website, error) {
	var out []resource.Website
	for _, w := range f.websites {
		if w.AccountID == accountID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) WebsiteByID(_ context.Context, id, accountID int64) (*resource.Website, error) {
	w, ok := f.websites[id]
	if !ok || w.AccountID != accountID {
		return nil, resource.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeStore) WebsiteBySubdomain(_ context.Context, subdomain string) (*resource.Website, error) {
	for _, w := range f.websites {
		if w.Subdomain == subdomain {
			cp := *w
			return &cp, nil
		}
	}
	return nil, resource.ErrNotFound
}

func (f *fakeStore) CreateWebsite(_ context.Context, w *resource.Website) error {
	if f.failCreateWebsite != nil {
		return f.failCreateWebsite
	}
	w.ID = f.id()
	cp := *w
	f.websites[w.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateWebsite(_ context.Context, w *resource.Website) error {
	if f.failUpdateWebsite != nil {
		return f.failUpdateWebsite
	}
	cur, ok := f.websites[w.ID]
	if !ok || cur.AccountID != w.AccountID {
		return resource.ErrNotFound
	}
	cp := *w
	f.websites[w.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteWebsite(_ context.Context, id, accountID int64) error {
	cur, ok := f.websites[id]
	if !ok || cur.AccountID != accountID {
		return resource.ErrNotFound
	}
	delete(f.websites, id)
	return nil
}

func (f *fakeStore) CountRedirects(_ context.Context, accountID int64) (int, error) {
	n := 0
	for _, r := range f.redirects {
		if r.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListRedirects(_ context.Context, accountID int64) ([]resource.Redirect, error) {
	var out []resource.Redirect
	for _, r := range f.redirects {
		if r.AccountID == accountID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) RedirectByID(_ context.Context, id, accountID int64) (*resource.Redirect, error) {
	r, ok := f.redirects[id]
	if !ok || r.AccountID != accountID {
		return nil, resource.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) RedirectByName(_ context.Context, name string) (*resource.Redirect, error) {
	for _, r := range f.redirects {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, resource.ErrNotFound
}

func (f *fakeStore) CreateRedirect(_ context.Context, r *resource.Redirect) error {
	if f.failCreateRedirect != nil {
		return f.failCreateRedirect
	}
	r.ID = f.id()
	cp := *r
	f.redirects[r.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateRedirect(_ context.Context, r *resource.Redirect) error {
	if f.failUpdateRedirect != nil {
		return f.failUpdateRedirect
	}
	cur, ok := f.redirects[r.ID]
	if !ok || cur.AccountID != r.AccountID {
		return resource.ErrNotFound
	}
	cp := *r
	f.redirects[r.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteRedirect(_ context.Context, id, accountID int64) error {
	cur, ok := f.redirects[id]
	if !ok || cur.AccountID != accountID {
		return resource.ErrNotFound
	}
	delete(f.redirects, id)
	return nil
}

func (f *fakeStore) CountGitHubMappings(_ context.Context, accountID int64) (int, error) {
	n := 0
	for _, m := range f.mappings {
		if m.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListGitHubMappings(_ context.Context, accountID int64) ([]resource.GitHubMapping, error) {
	var out []resource.GitHubMapping
	for _, m := range f.mappings {
		if m.AccountID == accountID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) GitHubMappingByID(_ context.Context, id, accountID int64) (*resource.GitHubMapping, error) {
	m, ok := f.mappings[id]
	if !ok || m.AccountID != accountID {
		return nil, resource.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) GitHubMappingBySubdomain(_ context.Context, subdomain string) (*resource.GitHubMapping, error) {
	for _, m := range f.mappings {
		if m.Subdomain == subdomain {
			cp := *m
			return &cp, nil
		}
	}
	return nil, resource.ErrNotFound
}

func (f *fakeStore) CreateGitHubMapping(_ context.Context, m *resource.GitHubMapping) error {
	if f.failCreateMapping != nil {
		return f.failCreateMapping
	}
	m.ID = f.id()
	cp := *m
	f.mappings[m.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateGitHubMapping(_ context.Context, m *resource.GitHubMapping) error {
	if f.failUpdateMapping != nil {
		return f.failUpdateMapping
	}
	cur, ok := f.mappings[m.ID]
	if !ok || cur.AccountID != m.AccountID {
		return resource.ErrNotFound
	}
	cp := *m
	f.mappings[m.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteGitHubMapping(_ context.Context, id, accountID int64) error {
	cur, ok := f.mappings[id]
	if !ok || cur.AccountID != accountID {
		return resource.ErrNotFound
	}
	delete(f.mappings, id)
	return nil
}

/*──────────────────────────────── harness ─────────────────────────────────*/

type harness struct {
	svc   *Service
	store *fakeStore
	dns   *fakeDNS
	sites *fakeSites
	pages *fakePages
}

func newHarness() *harness {
	h := &harness{
		store: newFakeStore(),
		dns:   newFakeDNS(),
		sites: newFakeSites(),
		pages: newFakePages(),
	}
	h.svc = New(h.store, h.dns, h.sites, h.pages, Settings{
		Domain:         "sriox.com",
		ServerIP:       "203.0.113.7",
		MaxUploadBytes: 35_000_000,
		Quota:          2,
	}, zap.NewNop().Sugar())
	return h
}

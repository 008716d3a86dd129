// internal/provision/github.go
//
// GitHub Pages mapping workflows: CNAME record + row, no filesystem step.
package provision

import (
	"context"
	"errors"

	"github.com/sriox/platform/internal/dns"
	"github.com/sriox/platform/internal/resource"
	"github.com/sriox/platform/internal/validate"
)

// pagesHost returns the CNAME content for a repository owner.
func pagesHost(owner string) string { return owner + ".github.io" }

// CreateGitHubMapping validates, creates the CNAME record, and inserts
// the row.
func (s *Service) CreateGitHubMapping(ctx context.Context, accountID int64,
	subdomain, repoOwner, repoName string) (*resource.GitHubMapping, error) {

	wf := s.begin("github_mapping", "create")

	n, err := s.store.CountGitHubMappings(ctx, accountID)
	if err != nil {
		return nil, wf.fail(err)
	}
	if n >= s.cfg.Quota {
		return nil, wf.fail(resource.ErrQuotaExceeded)
	}
	if ok, reason := validate.Subdomain(subdomain); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if ok, reason := validate.RepoOwner(repoOwner); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if ok, reason := validate.RepoName(repoName); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if err := s.checkMappingSubdomainFree(ctx, subdomain, 0); err != nil {
		return nil, wf.fail(err)
	}

	if _, err := s.dns.CreateRecord(ctx, subdomain, "CNAME", pagesHost(repoOwner)); err != nil {
		return nil, wf.fail(&ProviderError{Op: "create CNAME record", Err: err})
	}
	wf.applied("delete CNAME record "+subdomain, func() error {
		return s.deleteRecordQuiet(subdomain)
	})

	m := &resource.GitHubMapping{
		Subdomain: subdomain,
		RepoOwner: repoOwner,
		RepoName:  repoName,
		AccountID: accountID,
	}
	if err := s.store.CreateGitHubMapping(ctx, m); err != nil {
		return nil, wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("github mapping provisioned",
		"subdomain", subdomain, "repo", repoOwner+"/"+repoName, "url", s.WebsiteURL(subdomain))
	return m, nil
}

// UpdateGitHubMapping changes the subdomain, owner, and/or repository.
// DNS is only touched when the subdomain or owner changed; a repo-only
// update is content-preserving and DNS-free.
func (s *Service) UpdateGitHubMapping(ctx context.Context, accountID, id int64,
	subdomain, repoOwner, repoName string) (*resource.GitHubMapping, error) {

	wf := s.begin("github_mapping", "update")

	m, err := s.store.GitHubMappingByID(ctx, id, accountID)
	if err != nil {
		return nil, wf.fail(err)
	}

	if m.Subdomain != subdomain {
		if ok, reason := validate.Subdomain(subdomain); !ok {
			return nil, wf.fail(&ValidationError{Reason: reason})
		}
		if err := s.checkMappingSubdomainFree(ctx, subdomain, id); err != nil {
			return nil, wf.fail(err)
		}
	}
	if ok, reason := validate.RepoOwner(repoOwner); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if ok, reason := validate.RepoName(repoName); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}

	oldSub, oldOwner, oldRepo := m.Subdomain, m.RepoOwner, m.RepoName

	if oldSub != subdomain || oldOwner != repoOwner {
		if err := s.deleteRecordQuiet(oldSub); err != nil {
			wf.log.Warnw("old CNAME removal failed before re-point",
				"subdomain", oldSub, "err", err)
		}
		wf.applied("restore CNAME record "+oldSub, func() error {
			_, err := s.dns.CreateRecord(context.WithoutCancel(ctx), oldSub, "CNAME", pagesHost(oldOwner))
			return err
		})

		if _, err := s.dns.CreateRecord(ctx, subdomain, "CNAME", pagesHost(repoOwner)); err != nil {
			return nil, wf.fail(&ProviderError{Op: "create CNAME record", Err: err})
		}
		wf.applied("delete CNAME record "+subdomain, func() error {
			return s.deleteRecordQuiet(subdomain)
		})
	}

	m.Subdomain = subdomain
	m.RepoOwner = repoOwner
	m.RepoName = repoName
	if err := s.store.UpdateGitHubMapping(ctx, m); err != nil {
		m.Subdomain, m.RepoOwner, m.RepoName = oldSub, oldOwner, oldRepo
		return nil, wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("github mapping updated",
		"from", oldSub, "to", subdomain, "repo", repoOwner+"/"+repoName)
	return m, nil
}

// DeleteGitHubMapping removes the CNAME best-effort, then the row.  A
// record already removed out-of-band is logged and does not block.
func (s *Service) DeleteGitHubMapping(ctx context.Context, accountID, id int64) error {
	wf := s.begin("github_mapping", "delete")

	m, err := s.store.GitHubMappingByID(ctx, id, accountID)
	if err != nil {
		return wf.fail(err)
	}

	if err := s.dns.DeleteRecord(ctx, m.Subdomain); err != nil {
		if errors.Is(err, dns.ErrRecordNotFound) {
			wf.log.Infow("CNAME record already absent", "subdomain", m.Subdomain)
		} else {
			wf.orphan("CNAME record "+m.Subdomain, err)
		}
	}

	if err := s.store.DeleteGitHubMapping(ctx, id, accountID); err != nil {
		return wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("github mapping deleted", "subdomain", m.Subdomain, "account", accountID)
	return nil
}

// checkMappingSubdomainFree is the advisory uniqueness pre-check for
// mapping subdomains.
func (s *Service) checkMappingSubdomainFree(ctx context.Context, subdomain string, exceptID int64) error {
	existing, err := s.store.GitHubMappingBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == exceptID {
		return nil
	}
	return resource.ErrConflict
}

// internal/provision/website.go
//
// Website workflows: archive extraction + A record + row.
//
// Create applies side effects in a fixed order (folder, then DNS, then
// row) so the undo stack always reverses them newest-first.  Update
// follows the try-new/restore-old discipline for both the DNS record and
// the folder move.  Delete is best-effort cleanup with a guaranteed row
// removal.
package provision

import (
	"context"
	"errors"

	"github.com/sriox/platform/internal/dns"
	"github.com/sriox/platform/internal/resource"
	"github.com/sriox/platform/internal/validate"
)

// CreateWebsite validates, extracts the uploaded archive, creates the A
// record, and inserts the row.  archivePath is a temporary zip file the
// extractor consumes; size is the declared upload size.
func (s *Service) CreateWebsite(ctx context.Context, accountID int64,
	subdomain, archivePath string, size int64) (*resource.Website, error) {

	wf := s.begin("website", "create")

	if size > s.cfg.MaxUploadBytes {
		return nil, wf.fail(ErrUploadTooLarge)
	}
	n, err := s.store.CountWebsites(ctx, accountID)
	if err != nil {
		return nil, wf.fail(err)
	}
	if n >= s.cfg.Quota {
		return nil, wf.fail(resource.ErrQuotaExceeded)
	}
	if ok, reason := validate.Subdomain(subdomain); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if err := s.checkSubdomainFree(ctx, subdomain, 0); err != nil {
		return nil, wf.fail(err)
	}

	// Side effect #1: extract.  Overwrite semantics make a retried create
	// after a DNS failure reuse the same folder safely.
	rel, err := s.sites.Extract(archivePath, subdomain)
	if err != nil {
		return nil, wf.fail(&StorageError{Op: "extract site", Err: err})
	}
	wf.applied("remove extracted folder "+subdomain, func() error {
		s.sites.Delete(subdomain)
		return nil
	})

	// Side effect #2: DNS.
	if _, err := s.dns.CreateRecord(ctx, subdomain, "A", s.cfg.ServerIP); err != nil {
		return nil, wf.fail(&ProviderError{Op: "create A record", Err: err})
	}
	wf.applied("delete A record "+subdomain, func() error {
		return s.deleteRecordQuiet(subdomain)
	})

	web := &resource.Website{
		Subdomain:  subdomain,
		FolderPath: rel,
		AccountID:  accountID,
	}
	if err := s.store.CreateWebsite(ctx, web); err != nil {
		// Uniqueness race lost at the index, or a plain DB failure; either
		// way the DNS record and folder must go before we surface it.
		return nil, wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("website provisioned",
		"subdomain", subdomain, "account", accountID, "url", s.WebsiteURL(subdomain))
	return web, nil
}

// UpdateWebsite changes a website's subdomain.  A same-name update is
// content-preserving and touches neither DNS nor the filesystem.
func (s *Service) UpdateWebsite(ctx context.Context, accountID, id int64,
	subdomain string) (*resource.Website, error) {

	wf := s.begin("website", "update")

	web, err := s.store.WebsiteByID(ctx, id, accountID)
	if err != nil {
		return nil, wf.fail(err)
	}
	if web.Subdomain == subdomain {
		wf.commit()
		return web, nil
	}
	if ok, reason := validate.Subdomain(subdomain); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if err := s.checkSubdomainFree(ctx, subdomain, id); err != nil {
		return nil, wf.fail(err)
	}

	oldSub := web.Subdomain

	// Re-point DNS: drop the old record, then create the new one.  If the
	// new create fails the undo step recreates the old record; if that
	// restore itself fails the workflow logs the inconsistency and the
	// caller still sees the provider error.
	if err := s.deleteRecordQuiet(oldSub); err != nil {
		wf.log.Warnw("old DNS record removal failed before re-point",
			"subdomain", oldSub, "err", err)
	}
	wf.applied("restore A record "+oldSub, func() error {
		_, err := s.dns.CreateRecord(context.WithoutCancel(ctx), oldSub, "A", s.cfg.ServerIP)
		return err
	})

	if _, err := s.dns.CreateRecord(ctx, subdomain, "A", s.cfg.ServerIP); err != nil {
		return nil, wf.fail(&ProviderError{Op: "create A record", Err: err})
	}
	wf.applied("delete A record "+subdomain, func() error {
		return s.deleteRecordQuiet(subdomain)
	})

	// Move the folder; on a later failure it moves back.
	if err := s.sites.Rename(oldSub, subdomain); err != nil {
		return nil, wf.fail(&StorageError{Op: "move site folder", Err: err})
	}
	wf.applied("move site folder back to "+oldSub, func() error {
		return s.sites.Rename(subdomain, oldSub)
	})

	web.Subdomain = subdomain
	web.FolderPath = s.sites.RelPath(subdomain)
	if err := s.store.UpdateWebsite(ctx, web); err != nil {
		web.Subdomain = oldSub
		web.FolderPath = s.sites.RelPath(oldSub)
		return nil, wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("website re-pointed", "from", oldSub, "to", subdomain)
	return web, nil
}

// DeleteWebsite removes the DNS record and folder best-effort, then the
// row unconditionally.  Cleanup failures are logged, never returned: the
// quota slot must free even when the provider is unreachable.
func (s *Service) DeleteWebsite(ctx context.Context, accountID, id int64) error {
	wf := s.begin("website", "delete")

	web, err := s.store.WebsiteByID(ctx, id, accountID)
	if err != nil {
		return wf.fail(err)
	}

	if err := s.dns.DeleteRecord(ctx, web.Subdomain); err != nil {
		if errors.Is(err, dns.ErrRecordNotFound) {
			wf.log.Infow("DNS record already absent", "subdomain", web.Subdomain)
		} else {
			wf.orphan("A record "+web.Subdomain, err)
		}
	}
	if !s.sites.Delete(web.Subdomain) {
		wf.log.Infow("site folder already absent", "subdomain", web.Subdomain)
	}

	if err := s.store.DeleteWebsite(ctx, id, accountID); err != nil {
		return wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("website deleted", "subdomain", web.Subdomain, "account", accountID)
	return nil
}

/*──────────────────────────────── helpers ─────────────────────────────────*/

// checkSubdomainFree is the advisory fast-fail uniqueness pre-check for
// websites.  The unique index remains the authority; exceptID skips the
// row being updated.
func (s *Service) checkSubdomainFree(ctx context.Context, subdomain string, exceptID int64) error {
	existing, err := s.store.WebsiteBySubdomain(ctx, subdomain)
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

// deleteRecordQuiet deletes a record treating "not found" as success.
// Used by compensation paths, where an absent record means the ambiguous
// create never persisted remotely.
func (s *Service) deleteRecordQuiet(name string) error {
	err := s.dns.DeleteRecord(context.Background(), name)
	if err != nil && !errors.Is(err, dns.ErrRecordNotFound) {
		return err
	}
	return nil
}

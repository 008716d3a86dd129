// internal/provision/redirect.go
//
// Redirect workflows: generated page + row.  No DNS involvement; the
// short link lives under the apex domain.
package provision

import (
	"context"
	"errors"

	"github.com/sriox/platform/internal/resource"
	"github.com/sriox/platform/internal/validate"
)

// CreateRedirect validates, writes the static redirect page, and inserts
// the row.  On a lost insert race the page is removed again.
func (s *Service) CreateRedirect(ctx context.Context, accountID int64,
	name, targetURL string) (*resource.Redirect, error) {

	wf := s.begin("redirect", "create")

	n, err := s.store.CountRedirects(ctx, accountID)
	if err != nil {
		return nil, wf.fail(err)
	}
	if n >= s.cfg.Quota {
		return nil, wf.fail(resource.ErrQuotaExceeded)
	}
	if ok, reason := validate.RedirectName(name); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if ok, reason := validate.URL(targetURL); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if err := s.checkRedirectNameFree(ctx, name, 0); err != nil {
		return nil, wf.fail(err)
	}

	if err := s.pages.Write(name, targetURL); err != nil {
		return nil, wf.fail(&StorageError{Op: "write redirect page", Err: err})
	}
	wf.applied("remove redirect page "+name, func() error {
		return s.pages.Remove(name)
	})

	red := &resource.Redirect{
		Name:      name,
		TargetURL: targetURL,
		AccountID: accountID,
	}
	if err := s.store.CreateRedirect(ctx, red); err != nil {
		return nil, wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("redirect provisioned",
		"name", name, "target", targetURL, "url", s.RedirectURL(name))
	return red, nil
}

// UpdateRedirect changes a redirect's name and/or target URL.  When
// neither field changed the workflow is a no-op.
func (s *Service) UpdateRedirect(ctx context.Context, accountID, id int64,
	name, targetURL string) (*resource.Redirect, error) {

	wf := s.begin("redirect", "update")

	red, err := s.store.RedirectByID(ctx, id, accountID)
	if err != nil {
		return nil, wf.fail(err)
	}

	renamed := red.Name != name
	if renamed {
		if ok, reason := validate.RedirectName(name); !ok {
			return nil, wf.fail(&ValidationError{Reason: reason})
		}
		if err := s.checkRedirectNameFree(ctx, name, id); err != nil {
			return nil, wf.fail(err)
		}
	}
	if ok, reason := validate.URL(targetURL); !ok {
		return nil, wf.fail(&ValidationError{Reason: reason})
	}
	if !renamed && red.TargetURL == targetURL {
		wf.commit()
		return red, nil
	}

	oldName, oldURL := red.Name, red.TargetURL

	// Write the page under its (possibly new) name first; the old page is
	// only removed once the new one exists.
	if err := s.pages.Write(name, targetURL); err != nil {
		return nil, wf.fail(&StorageError{Op: "write redirect page", Err: err})
	}
	if renamed {
		wf.applied("remove redirect page "+name, func() error {
			return s.pages.Remove(name)
		})
		if err := s.pages.Remove(oldName); err != nil {
			return nil, wf.fail(&StorageError{Op: "remove old redirect page", Err: err})
		}
		wf.applied("restore redirect page "+oldName, func() error {
			return s.pages.Write(oldName, oldURL)
		})
	} else {
		wf.applied("restore redirect page "+oldName, func() error {
			return s.pages.Write(oldName, oldURL)
		})
	}

	red.Name = name
	red.TargetURL = targetURL
	if err := s.store.UpdateRedirect(ctx, red); err != nil {
		red.Name = oldName
		red.TargetURL = oldURL
		return nil, wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("redirect updated", "from", oldName, "to", name, "target", targetURL)
	return red, nil
}

// DeleteRedirect removes the page best-effort, then the row.
func (s *Service) DeleteRedirect(ctx context.Context, accountID, id int64) error {
	wf := s.begin("redirect", "delete")

	red, err := s.store.RedirectByID(ctx, id, accountID)
	if err != nil {
		return wf.fail(err)
	}

	if err := s.pages.Remove(red.Name); err != nil {
		wf.orphan("redirect page "+red.Name, err)
	}

	if err := s.store.DeleteRedirect(ctx, id, accountID); err != nil {
		return wf.fail(err)
	}

	wf.commit()
	wf.log.Infow("redirect deleted", "name", red.Name, "account", accountID)
	return nil
}

// checkRedirectNameFree is the advisory uniqueness pre-check for redirect
// names.
func (s *Service) checkRedirectNameFree(ctx context.Context, name string, exceptID int64) error {
	existing, err := s.store.RedirectByName(ctx, name)
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

// internal/resource/store.go
//
// Transactional CRUD over websites, redirects, and GitHub mappings.
//
// Context
// -------
// The store is the single authority for two invariants the orchestrator's
// pre-checks can only approximate:
//
//   - Quota: an account holds at most N live resources of a kind.  Create
//     counts and inserts inside one transaction, with the count locking
//     the owner's rows (FOR UPDATE), so two concurrent creates cannot
//     both pass the check.
//   - Uniqueness: the public name carries a unique index.  A duplicate-key
//     error at insert or update time is mapped to ErrConflict, closing the
//     window between an advisory pre-check and the write.
//
// Update and delete are owner-scoped at SQL level; an id that exists but
// belongs to someone else produces ErrNotFound, never a hint that the row
// exists.
//
// Notes
// -----
//   - Column lists match the model structs; update both together.
//   - Timestamps are written from Go (UTC) so tests can pin them.
package resource

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store wraps the control-plane pool.  Construct once with NewStore and
// share; sqlx pools are safe for concurrent use.
type Store struct {
	db    *sqlx.DB
	quota int
}

// NewStore returns a Store enforcing quotaPerKind live rows per account
// and kind.
func NewStore(db *sqlx.DB, quotaPerKind int) *Store {
	return &Store{db: db, quota: quotaPerKind}
}

// Quota returns the per-kind ceiling the store enforces.
func (s *Store) Quota() int { return s.quota }

/*─────────────────────────────── websites ─────────────────────────────────*/

// CountWebsites returns the number of websites owned by accountID.
func (s *Store) CountWebsites(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM website WHERE account_id = ?`, accountID)
	return n, err
}

// ListWebsites returns every website owned by accountID, oldest first.
func (s *Store) ListWebsites(ctx context.Context, accountID int64) ([]Website, error) {
	const q = `
        SELECT id, subdomain, folder_path, account_id, created_at, updated_at
        FROM   website
        WHERE  account_id = ?
        ORDER  BY id`
	var rows []Website
	if err := s.db.SelectContext(ctx, &rows, q, accountID); err != nil {
		return nil, err
	}
	return rows, nil
}

// WebsiteByID fetches one website scoped to its owner.
func (s *Store) WebsiteByID(ctx context.Context, id, accountID int64) (*Website, error) {
	const q = `
        SELECT id, subdomain, folder_path, account_id, created_at, updated_at
        FROM   website
        WHERE  id = ? AND account_id = ?
        LIMIT  1`
	var w Website
	if err := s.db.GetContext(ctx, &w, q, id, accountID); err != nil {
		return nil, mapNoRows(err)
	}
	return &w, nil
}

// WebsiteBySubdomain fetches one website by its unique public name,
// regardless of owner.  Used by the orchestrator's advisory pre-check.
func (s *Store) WebsiteBySubdomain(ctx context.Context, subdomain string) (*Website, error) {
	const q = `
        SELECT id, subdomain, folder_path, account_id, created_at, updated_at
        FROM   website
        WHERE  subdomain = ?
        LIMIT  1`
	var w Website
	if err := s.db.GetContext(ctx, &w, q, subdomain); err != nil {
		return nil, mapNoRows(err)
	}
	return &w, nil
}

// CreateWebsite inserts w after re-checking the owner's quota inside the
// same transaction.  On success w.ID and w.CreatedAt are filled in.
func (s *Store) CreateWebsite(ctx context.Context, w *Website) error {
	return s.createWithQuota(ctx, `SELECT COUNT(*) FROM website WHERE account_id = ? FOR UPDATE`,
		w.AccountID, func(tx *sqlx.Tx) (sql.Result, error) {
			w.CreatedAt = time.Now().UTC()
			return tx.ExecContext(ctx,
				`INSERT INTO website (subdomain, folder_path, account_id, created_at)
                 VALUES (?, ?, ?, ?)`,
				w.Subdomain, w.FolderPath, w.AccountID, w.CreatedAt)
		}, &w.ID)
}

// UpdateWebsite rewrites the mutable columns of w, scoped to its owner.
func (s *Store) UpdateWebsite(ctx context.Context, w *Website) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE website SET subdomain = ?, folder_path = ?, updated_at = ?
         WHERE id = ? AND account_id = ?`,
		w.Subdomain, w.FolderPath, now, w.ID, w.AccountID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	w.UpdatedAt = &now
	return nil
}

// DeleteWebsite removes the row, scoped to its owner.
func (s *Store) DeleteWebsite(ctx context.Context, id, accountID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM website WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

/*─────────────────────────────── redirects ────────────────────────────────*/

// CountRedirects returns the number of redirects owned by accountID.
func (s *Store) CountRedirects(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM redirect WHERE account_id = ?`, accountID)
	return n, err
}

// ListRedirects returns every redirect owned by accountID, oldest first.
func (s *Store) ListRedirects(ctx context.Context, accountID int64) ([]Redirect, error) {
	const q = `
        SELECT id, name, target_url, account_id, created_at, updated_at
        FROM   redirect
        WHERE  account_id = ?
        ORDER  BY id`
	var rows []Redirect
	if err := s.db.SelectContext(ctx, &rows, q, accountID); err != nil {
		return nil, err
	}
	return rows, nil
}

// RedirectByID fetches one redirect scoped to its owner.
func (s *Store) RedirectByID(ctx context.Context, id, accountID int64) (*Redirect, error) {
	const q = `
        SELECT id, name, target_url, account_id, created_at, updated_at
        FROM   redirect
        WHERE  id = ? AND account_id = ?
        LIMIT  1`
	var r Redirect
	if err := s.db.GetContext(ctx, &r, q, id, accountID); err != nil {
		return nil, mapNoRows(err)
	}
	return &r, nil
}

// RedirectByName fetches one redirect by its unique public name.
func (s *Store) RedirectByName(ctx context.Context, name string) (*Redirect, error) {
	const q = `
        SELECT id, name, target_url, account_id, created_at, updated_at
        FROM   redirect
        WHERE  name = ?
        LIMIT  1`
	var r Redirect
	if err := s.db.GetContext(ctx, &r, q, name); err != nil {
		return nil, mapNoRows(err)
	}
	return &r, nil
}

// CreateRedirect inserts r after re-checking the owner's quota inside the
// same transaction.
func (s *Store) CreateRedirect(ctx context.Context, r *Redirect) error {
	return s.createWithQuota(ctx, `SELECT COUNT(*) FROM redirect WHERE account_id = ? FOR UPDATE`,
		r.AccountID, func(tx *sqlx.Tx) (sql.Result, error) {
			r.CreatedAt = time.Now().UTC()
			return tx.ExecContext(ctx,
				`INSERT INTO redirect (name, target_url, account_id, created_at)
                 VALUES (?, ?, ?, ?)`,
				r.Name, r.TargetURL, r.AccountID, r.CreatedAt)
		}, &r.ID)
}

// UpdateRedirect rewrites the mutable columns of r, scoped to its owner.
func (s *Store) UpdateRedirect(ctx context.Context, r *Redirect) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE redirect SET name = ?, target_url = ?, updated_at = ?
         WHERE id = ? AND account_id = ?`,
		r.Name, r.TargetURL, now, r.ID, r.AccountID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	r.UpdatedAt = &now
	return nil
}

// DeleteRedirect removes the row, scoped to its owner.
func (s *Store) DeleteRedirect(ctx context.Context, id, accountID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM redirect WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

/*──────────────────────────── github mappings ─────────────────────────────*/

// CountGitHubMappings returns the number of mappings owned by accountID.
func (s *Store) CountGitHubMappings(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM github_mapping WHERE account_id = ?`, accountID)
	return n, err
}

// ListGitHubMappings returns every mapping owned by accountID, oldest first.
func (s *Store) ListGitHubMappings(ctx context.Context, accountID int64) ([]GitHubMapping, error) {
	const q = `
        SELECT id, subdomain, repo_owner, repo_name, account_id, created_at, updated_at
        FROM   github_mapping
        WHERE  account_id = ?
        ORDER  BY id`
	var rows []GitHubMapping
	if err := s.db.SelectContext(ctx, &rows, q, accountID); err != nil {
		return nil, err
	}
	return rows, nil
}

// GitHubMappingByID fetches one mapping scoped to its owner.
func (s *Store) GitHubMappingByID(ctx context.Context, id, accountID int64) (*GitHubMapping, error) {
	const q = `
        SELECT id, subdomain, repo_owner, repo_name, account_id, created_at, updated_at
        FROM   github_mapping
        WHERE  id = ? AND account_id = ?
        LIMIT  1`
	var m GitHubMapping
	if err := s.db.GetContext(ctx, &m, q, id, accountID); err != nil {
		return nil, mapNoRows(err)
	}
	return &m, nil
}

// GitHubMappingBySubdomain fetches one mapping by its unique public name.
func (s *Store) GitHubMappingBySubdomain(ctx context.Context, subdomain string) (*GitHubMapping, error) {
	const q = `
        SELECT id, subdomain, repo_owner, repo_name, account_id, created_at, updated_at
        FROM   github_mapping
        WHERE  subdomain = ?
        LIMIT  1`
	var m GitHubMapping
	if err := s.db.GetContext(ctx, &m, q, subdomain); err != nil {
		return nil, mapNoRows(err)
	}
	return &m, nil
}

// CreateGitHubMapping inserts m after re-checking the owner's quota inside
// the same transaction.
func (s *Store) CreateGitHubMapping(ctx context.Context, m *GitHubMapping) error {
	return s.createWithQuota(ctx, `SELECT COUNT(*) FROM github_mapping WHERE account_id = ? FOR UPDATE`,
		m.AccountID, func(tx *sqlx.Tx) (sql.Result, error) {
			m.CreatedAt = time.Now().UTC()
			return tx.ExecContext(ctx,
				`INSERT INTO github_mapping (subdomain, repo_owner, repo_name, account_id, created_at)
                 VALUES (?, ?, ?, ?, ?)`,
				m.Subdomain, m.RepoOwner, m.RepoName, m.AccountID, m.CreatedAt)
		}, &m.ID)
}

// UpdateGitHubMapping rewrites the mutable columns of m, scoped to its owner.
func (s *Store) UpdateGitHubMapping(ctx context.Context, m *GitHubMapping) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE github_mapping SET subdomain = ?, repo_owner = ?, repo_name = ?, updated_at = ?
         WHERE id = ? AND account_id = ?`,
		m.Subdomain, m.RepoOwner, m.RepoName, now, m.ID, m.AccountID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	m.UpdatedAt = &now
	return nil
}

// DeleteGitHubMapping removes the row, scoped to its owner.
func (s *Store) DeleteGitHubMapping(ctx context.Context, id, accountID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM github_mapping WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

/*──────────────────────────────── helpers ─────────────────────────────────*/

// createWithQuota runs the count-then-insert pair in one transaction.  The
// FOR UPDATE count serialises concurrent creates for the same owner, so
// the quota cannot be overshot by a race.
func (s *Store) createWithQuota(ctx context.Context, countQ string, accountID int64,
	insert func(tx *sqlx.Tx) (sql.Result, error), idOut *int64) error {

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var n int
	if err := tx.GetContext(ctx, &n, countQ, accountID); err != nil {
		return err
	}
	if n >= s.quota {
		return ErrQuotaExceeded
	}

	res, err := insert(tx)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	*idOut = id

	return tx.Commit()
}

// requireRow converts a zero-row write into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapNoRows converts sql.ErrNoRows into the store's sentinel.
func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// internal/resource/model.go
//
// Row types for the three provisioned resource kinds.
//
// Context
// -------
// Each resource is owned by exactly one account and carries a globally
// unique public name (subdomain label or redirect path segment).  The
// unique index on that column is the authoritative arbiter of naming
// races; pre-checks elsewhere are advisory only.
//
// UpdatedAt is nullable because rows are only stamped on mutation, never
// on insert, mirroring the control-plane schema.
package resource

import "time"

// Website is a static site extracted under the storage root and served at
// https://<subdomain>.<platform domain>.  FolderPath is relative to the
// storage root and must always resolve inside it.
type Website struct {
	ID         int64      `db:"id"          json:"id"`
	Subdomain  string     `db:"subdomain"   json:"subdomain"`
	FolderPath string     `db:"folder_path" json:"folder_path"`
	AccountID  int64      `db:"account_id"  json:"-"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"  json:"updated_at,omitempty"`
}

// Redirect is a short link served at https://<platform domain>/<name>.
// The generated HTML page exists on disk iff the row exists.
type Redirect struct {
	ID        int64      `db:"id"         json:"id"`
	Name      string     `db:"name"       json:"name"`
	TargetURL string     `db:"target_url" json:"target_url"`
	AccountID int64      `db:"account_id" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// GitHubMapping points a subdomain at <repo owner>.github.io via a CNAME
// record.  The DNS record exists iff the row exists.
type GitHubMapping struct {
	ID        int64      `db:"id"         json:"id"`
	Subdomain string     `db:"subdomain"  json:"subdomain"`
	RepoOwner string     `db:"repo_owner" json:"github_username"`
	RepoName  string     `db:"repo_name"  json:"repository_name"`
	AccountID int64      `db:"account_id" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// internal/account/model.go
package account

import "time"

// Account is a platform tenant.  Every provisioned resource hangs off an
// account ID, and quotas are enforced per account per resource kind.
type Account struct {
	ID           int64      `db:"id"            json:"id"`
	Username     string     `db:"username"      json:"username"`
	Email        string     `db:"email"         json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsActive     bool       `db:"is_active"     json:"is_active"`
	CreatedAt    *time.Time `db:"created_at"    json:"created_at,omitempty"`
}

// internal/resource/errors.go
//
// Store-level error taxonomy.
//
// Callers branch on these sentinels with errors.Is; the HTTP layer maps
// them to 403, 404, and 409.  Anything else bubbling out of the store is a
// raw database error.
package resource

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound means the row does not exist or is not owned by the
	// calling account.  The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("resource: not found")

	// ErrConflict means the public name is already taken.  Returned both
	// by advisory pre-checks and by the insert/update path when the unique
	// index fires.
	ErrConflict = errors.New("resource: name already in use")

	// ErrQuotaExceeded means the account already holds the maximum number
	// of live resources of the requested kind.
	ErrQuotaExceeded = errors.New("resource: per-account quota reached")
)

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062), the signal that a naming race lost at insert time.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

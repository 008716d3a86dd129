// internal/account/store.go
//
// MySQL-backed account persistence via sqlx.  Duplicate usernames and
// emails surface as resource.ErrConflict so the HTTP layer maps them the
// same way it maps resource name collisions.
package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/sriox/platform/internal/resource"
)

// Store wraps the shared database handle for account rows.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// Create inserts the account and fills in its ID and CreatedAt.
func (s *Store) Create(ctx context.Context, a *Account) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO account (username, email, password_hash, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.Username, a.Email, a.PasswordHash, a.IsActive, now)
	if err != nil {
		if isDuplicate(err) {
			return resource.ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	a.CreatedAt = &now
	return nil
}

// ByID fetches one account by primary key.
func (s *Store) ByID(ctx context.Context, id int64) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a,
		`SELECT id, username, email, password_hash, is_active, created_at
		   FROM account WHERE id = ?`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &a, nil
}

// ByUsername fetches one account by its unique username.
func (s *Store) ByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a,
		`SELECT id, username, email, password_hash, is_active, created_at
		   FROM account WHERE username = ?`, username)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &a, nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return resource.ErrNotFound
	}
	return err
}

package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/exacode/docsink/domain"
	"golang.org/x/crypto/bcrypt"
)

// dbUser represents a row of the users table.
type dbUser struct {
	Name         string `db:"name"`          // Login name.
	PasswordHash []byte `db:"password_hash"` // bcrypt hash of the password.
}

// CreateUser stores a user with a bcrypt hash of password, replacing the password of an
// existing user with the same name.
func (d *Database) CreateUser(name, password string) error {
	if name == "" || password == "" {
		return errors.New("creating user : name and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password for %s : %w", name, err)
	}

	ctx, cancel := d.statementContext()
	defer cancel()

	user := dbUser{Name: name, PasswordHash: hash}
	query := `INSERT INTO users (name, password_hash) VALUES (:name, :password_hash)
	          ON CONFLICT (name) DO UPDATE SET password_hash = excluded.password_hash, updated_at = CURRENT_TIMESTAMP`
	if _, err := d.dbConn.NamedExecContext(ctx, query, user); err != nil {
		return storageError(fmt.Sprintf("creating user %s", name), err)
	}
	return nil
}

// Authenticate checks password against the stored hash of the named user.
// Unknown users and wrong passwords both fail with domain.ErrAuthFailed.
func (d *Database) Authenticate(name, password string) error {
	ctx, cancel := d.statementContext()
	defer cancel()

	var user dbUser
	err := d.dbConn.GetContext(ctx, &user, `SELECT name, password_hash FROM users WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("authenticating %s : %w", name, domain.ErrAuthFailed)
	}
	if err != nil {
		return storageError(fmt.Sprintf("reading user %s", name), err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return fmt.Errorf("authenticating %s : %w", name, domain.ErrAuthFailed)
	}
	return nil
}

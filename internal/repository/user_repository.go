package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-service/internal/model"
)

// UserRepo persists user rows. Reads join the roles table so callers
// get the role name without a second query.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.username, u.email, u.password_hash, u.role_id, r.name, u.created_at`

// Create inserts a user and returns its ID. The password hash is
// computed by the caller; plaintext never reaches this layer. Emails
// are stored lower-cased so uniqueness is case-insensitive.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, roleID uint8) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role_id) VALUES (?,?,?,?)",
		username, email, passwordHash, roleID)
	if err != nil {
		// 1062 = MySQL duplicate entry; the message names the violated index.
		if msg := strings.ToLower(err.Error()); strings.Contains(msg, "1062") {
			if strings.Contains(msg, "username") {
				return 0, ErrUsernameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email=? LIMIT 1",
		email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id=? LIMIT 1",
		id)
}

// EmailExists reports whether a user with the given email is already
// registered. Comparison is case-insensitive.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// UsernameExists reports whether the username is already taken.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE username=? LIMIT 1", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

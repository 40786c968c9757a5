package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/auth-service/internal/model"
)

// RoleRepo reads the roles reference table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// Seed inserts the built-in roles if they are missing. It is
// idempotent and safe to run on every startup.
func (r *RoleRepo) Seed(ctx context.Context) error {
	seed := []struct {
		name, description string
	}{
		{model.RoleAdmin, "Full administrative access"},
		{model.RoleManager, "Manage resources of owned teams"},
		{model.RoleUser, "Default role for registered users"},
	}
	for _, s := range seed {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO roles (name, description) VALUES (?,?)",
			s.name, s.description); err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"pharma-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrRoleNotFound = errors.New("role assignment not found")

// RoleRepository reads and writes user_roles. Reads go through the
// has_role, get_user_roles and is_admin SQL functions.
type RoleRepository interface {
	HasRole(ctx context.Context, userID uuid.UUID, role domain.Role) (bool, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	CreateAdmin(ctx context.Context, callerID, newAdminID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID uuid.UUID, role domain.Role) error
	Remove(ctx context.Context, userID uuid.UUID, role domain.Role) error
	List(ctx context.Context) ([]domain.UserRole, error)
}

type roleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new instance of RoleRepository
func NewRoleRepository(db *sqlx.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) HasRole(ctx context.Context, userID uuid.UUID, role domain.Role) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT has_role($1, $2)`, userID, string(role)); err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return ok, nil
}

func (r *roleRepository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	roles := []domain.Role{}
	if err := r.db.SelectContext(ctx, &roles, `SELECT role FROM get_user_roles($1)`, userID); err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	return roles, nil
}

func (r *roleRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT is_admin($1)`, userID); err != nil {
		return false, fmt.Errorf("failed to check admin role: %w", err)
	}
	return ok, nil
}

// CreateAdmin grants admin to newAdminID. The function returns false
// without writing when callerID is not an admin itself.
func (r *roleRepository) CreateAdmin(ctx context.Context, callerID, newAdminID uuid.UUID) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT create_admin($1, $2)`, callerID, newAdminID); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return ok, nil
}

// Add is idempotent; granting a role twice leaves one row
func (r *roleRepository) Add(ctx context.Context, userID uuid.UUID, role domain.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES (:user_id, :role)
		ON CONFLICT ON CONSTRAINT user_roles_user_id_role_key DO NOTHING
	`
	_, err := r.db.NamedExecContext(ctx, query, &domain.UserRole{UserID: userID, Role: role})
	if err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

func (r *roleRepository) Remove(ctx context.Context, userID uuid.UUID, role domain.Role) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return expectAffected(result, ErrRoleNotFound)
}

func (r *roleRepository) List(ctx context.Context) ([]domain.UserRole, error) {
	roles := []domain.UserRole{}
	query := `SELECT id, user_id, role, created_at FROM user_roles ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

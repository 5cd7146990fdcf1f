package service

import (
	"context"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role management actions
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// RoleService is the privileged path for changing role assignments.
// Callers are expected to be admins; the handler enforces it.
type RoleService interface {
	Manage(ctx context.Context, action string, userID uuid.UUID, role domain.Role) error
	List(ctx context.Context) ([]domain.UserRole, error)
	CreateAdmin(ctx context.Context, callerID, newAdminID uuid.UUID) error
}

type roleService struct {
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewRoleService creates a new instance of RoleService
func NewRoleService(roleRepo repository.RoleRepository, userRepo repository.UserRepository, logger *zap.Logger) RoleService {
	return &roleService{roleRepo: roleRepo, userRepo: userRepo, logger: logger}
}

// Manage adds or removes one assignment. Adding is idempotent; removing a
// missing assignment returns ErrRoleNotFound.
func (s *roleService) Manage(ctx context.Context, action string, userID uuid.UUID, role domain.Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}

	switch action {
	case ActionAdd:
		if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
			return err
		}
		if err := s.roleRepo.Add(ctx, userID, role); err != nil {
			return err
		}
	case ActionRemove:
		if err := s.roleRepo.Remove(ctx, userID, role); err != nil {
			return err
		}
	default:
		return ErrInvalidAction
	}

	s.logger.Info("User role changed",
		zap.String("action", action),
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
	)
	return nil
}

func (s *roleService) List(ctx context.Context) ([]domain.UserRole, error) {
	return s.roleRepo.List(ctx)
}

// CreateAdmin grants admin through the create_admin function, which
// re-checks that the caller is an admin
func (s *roleService) CreateAdmin(ctx context.Context, callerID, newAdminID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, newAdminID); err != nil {
		return err
	}

	ok, err := s.roleRepo.CreateAdmin(ctx, callerID, newAdminID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	s.logger.Info("Admin created",
		zap.String("caller_id", callerID.String()),
		zap.String("user_id", newAdminID.String()),
	)
	return nil
}

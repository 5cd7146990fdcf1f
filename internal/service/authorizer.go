package service

import (
	"context"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authorizer answers role questions for a user. Every call goes to the
// database; nothing is cached, and a failed lookup counts as "no".
type Authorizer interface {
	HasRole(ctx context.Context, userID uuid.UUID, role domain.Role) bool
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
	IsPharmacist(ctx context.Context, userID uuid.UUID) bool
	Roles(ctx context.Context, userID uuid.UUID) []domain.Role
}

type authorizer struct {
	roleRepo repository.RoleRepository
	logger   *zap.Logger
}

// NewAuthorizer creates an Authorizer backed by the role functions
func NewAuthorizer(roleRepo repository.RoleRepository, logger *zap.Logger) Authorizer {
	return &authorizer{roleRepo: roleRepo, logger: logger}
}

func (a *authorizer) HasRole(ctx context.Context, userID uuid.UUID, role domain.Role) bool {
	ok, err := a.roleRepo.HasRole(ctx, userID, role)
	if err != nil {
		a.logger.Warn("Role check failed, denying",
			zap.String("user_id", userID.String()),
			zap.String("role", string(role)),
			zap.Error(err),
		)
		return false
	}
	return ok
}

func (a *authorizer) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	ok, err := a.roleRepo.IsAdmin(ctx, userID)
	if err != nil {
		a.logger.Warn("Admin check failed, denying",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return false
	}
	return ok
}

func (a *authorizer) IsPharmacist(ctx context.Context, userID uuid.UUID) bool {
	return a.HasRole(ctx, userID, domain.RolePharmacist)
}

// Roles lists the user's roles; on error the list is empty
func (a *authorizer) Roles(ctx context.Context, userID uuid.UUID) []domain.Role {
	roles, err := a.roleRepo.GetUserRoles(ctx, userID)
	if err != nil {
		a.logger.Warn("Role listing failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return []domain.Role{}
	}
	return roles
}

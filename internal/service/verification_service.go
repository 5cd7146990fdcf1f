package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Application is a pharmacy's request to be verified as pharmacist
type Application struct {
	PharmacyName      string
	LicenseID         string
	BusinessDocuments []string
	ContactName       string
	ContactEmail      string
	ContactPhone      *string
}

// VerificationService handles pharmacy verification. Approval grants the
// pharmacist role through RoleService; rejection changes no roles.
type VerificationService interface {
	Submit(ctx context.Context, userID uuid.UUID, app Application) (*domain.PharmacyVerification, error)
	Mine(ctx context.Context, userID uuid.UUID) (*domain.PharmacyVerification, error)
	List(ctx context.Context, status domain.VerificationStatus) ([]domain.PharmacyVerification, error)
	Approve(ctx context.Context, reviewerID, id uuid.UUID) (*domain.PharmacyVerification, error)
	Reject(ctx context.Context, reviewerID, id uuid.UUID, reason string) (*domain.PharmacyVerification, error)
}

type verificationService struct {
	verificationRepo repository.VerificationRepository
	roles            RoleService
	logger           *zap.Logger
}

// NewVerificationService creates a new instance of VerificationService
func NewVerificationService(
	verificationRepo repository.VerificationRepository,
	roles RoleService,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		verificationRepo: verificationRepo,
		roles:            roles,
		logger:           logger,
	}
}

func (s *verificationService) Submit(ctx context.Context, userID uuid.UUID, app Application) (*domain.PharmacyVerification, error) {
	docs := domain.StringList(app.BusinessDocuments)
	if docs == nil {
		docs = domain.StringList{}
	}

	v := &domain.PharmacyVerification{
		ID:                uuid.New(),
		UserID:            userID,
		PharmacyName:      app.PharmacyName,
		LicenseID:         app.LicenseID,
		BusinessDocuments: docs,
		ContactName:       app.ContactName,
		ContactEmail:      app.ContactEmail,
		ContactPhone:      app.ContactPhone,
		Status:            domain.VerificationPending,
		SubmittedAt:       time.Now(),
	}

	if err := s.verificationRepo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Verification submitted", zap.String("verification_id", v.ID.String()), zap.String("user_id", userID.String()))
	return v, nil
}

// Mine returns the caller's latest application
func (s *verificationService) Mine(ctx context.Context, userID uuid.UUID) (*domain.PharmacyVerification, error) {
	return s.verificationRepo.FindLatestByUser(ctx, userID)
}

func (s *verificationService) List(ctx context.Context, status domain.VerificationStatus) ([]domain.PharmacyVerification, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.verificationRepo.List(ctx, status)
}

func (s *verificationService) Approve(ctx context.Context, reviewerID, id uuid.UUID) (*domain.PharmacyVerification, error) {
	v, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Manage(ctx, ActionAdd, v.UserID, domain.RolePharmacist); err != nil {
		return nil, fmt.Errorf("failed to grant pharmacist role: %w", err)
	}

	return s.review(ctx, v, reviewerID, domain.VerificationApproved, nil)
}

func (s *verificationService) Reject(ctx context.Context, reviewerID, id uuid.UUID, reason string) (*domain.PharmacyVerification, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	v, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.review(ctx, v, reviewerID, domain.VerificationRejected, &reason)
}

func (s *verificationService) pending(ctx context.Context, id uuid.UUID) (*domain.PharmacyVerification, error) {
	v, err := s.verificationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != domain.VerificationPending {
		return nil, fmt.Errorf("%w: application is already %s", ErrInvalidTransition, v.Status)
	}
	return v, nil
}

func (s *verificationService) review(
	ctx context.Context,
	v *domain.PharmacyVerification,
	reviewerID uuid.UUID,
	status domain.VerificationStatus,
	reason *string,
) (*domain.PharmacyVerification, error) {
	now := time.Now()
	v.Status = status
	v.ReviewedAt = &now
	v.ReviewedBy = &reviewerID
	v.RejectionReason = reason

	if err := s.verificationRepo.UpdateReview(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Verification reviewed",
		zap.String("verification_id", v.ID.String()),
		zap.String("status", string(status)),
		zap.String("reviewer_id", reviewerID.String()),
	)
	return v, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/mapping"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrVerificationNotFound = errors.New("verification not found")

// VerificationRepository stores pharmacy verification applications
type VerificationRepository interface {
	Create(ctx context.Context, v *domain.PharmacyVerification) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PharmacyVerification, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.PharmacyVerification, error)
	List(ctx context.Context, status domain.VerificationStatus) ([]domain.PharmacyVerification, error)
	UpdateReview(ctx context.Context, v *domain.PharmacyVerification) error
}

type verificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository creates a new instance of VerificationRepository
func NewVerificationRepository(db *sqlx.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

const verificationColumns = `id, user_id, pharmacy_name, license_id, business_documents, contact_name,
	contact_email, contact_phone, status, submitted_at, reviewed_at, rejection_reason, reviewed_by`

func (r *verificationRepository) Create(ctx context.Context, v *domain.PharmacyVerification) error {
	query := `
		INSERT INTO pharmacy_verification (` + verificationColumns + `)
		VALUES (:id, :user_id, :pharmacy_name, :license_id, :business_documents, :contact_name,
		        :contact_email, :contact_phone, :status, :submitted_at, :reviewed_at, :rejection_reason, :reviewed_by)
	`
	if _, err := r.db.NamedExecContext(ctx, query, v); err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

func (r *verificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PharmacyVerification, error) {
	return r.get(ctx, `SELECT `+verificationColumns+` FROM pharmacy_verification WHERE id = $1`, id)
}

// FindLatestByUser returns the most recent application of a user
func (r *verificationRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.PharmacyVerification, error) {
	query := `SELECT ` + verificationColumns + ` FROM pharmacy_verification
		WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT 1`
	return r.get(ctx, query, userID)
}

func (r *verificationRepository) get(ctx context.Context, query string, arg interface{}) (*domain.PharmacyVerification, error) {
	var v domain.PharmacyVerification
	if err := r.db.GetContext(ctx, &v, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("failed to find verification: %w", err)
	}
	return &v, nil
}

// List returns applications newest first; an empty status lists all of them
func (r *verificationRepository) List(ctx context.Context, status domain.VerificationStatus) ([]domain.PharmacyVerification, error) {
	out := []domain.PharmacyVerification{}
	query := `SELECT ` + verificationColumns + ` FROM pharmacy_verification`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY submitted_at DESC`

	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	return out, nil
}

// UpdateReview persists the review outcome fields
func (r *verificationRepository) UpdateReview(ctx context.Context, v *domain.PharmacyVerification) error {
	result, err := patch(ctx, r.db.DB, "pharmacy_verification", mapping.Verifications, v.ID, reviewColumns(v))
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	return expectAffected(result, ErrVerificationNotFound)
}

// reviewColumns maps the review outcome of v to pharmacy_verification columns
func reviewColumns(v *domain.PharmacyVerification) map[string]interface{} {
	return mapping.Verifications.ToRemote(map[string]interface{}{
		"status":          string(v.Status),
		"reviewedAt":      v.ReviewedAt,
		"reviewedBy":      v.ReviewedBy,
		"rejectionReason": v.RejectionReason,
	})
}

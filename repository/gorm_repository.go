package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&interviewRecord{},
		&practiceRecord{},
	)
}

// translateError maps driver errors onto the application taxonomy. Unique
// violations become a Conflict carrying conflictMessage.
func translateError(err error, conflictMessage string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &apperr.AppError{Code: apperr.CodeConflict, Message: conflictMessage, Cause: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperr.AppError{Code: apperr.CodeConflict, Message: conflictMessage, Cause: err}
	}
	return apperr.Wrap(err, "database error")
}

// Company operations
func (r *GORMRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		slog.Error("Failed to create company", "error", err)
		return translateError(err, "company already exists")
	}
	slog.Info("Company created", "company_id", company.ID, "email", company.Email)
	return nil
}

func (r *GORMRepository) GetCompanyByEmail(ctx context.Context, email string) (*models.Company, error) {
	return r.findCompany(ctx, "email = ?", email)
}

func (r *GORMRepository) GetCompanyByTaxNumber(ctx context.Context, taxNumber string) (*models.Company, error) {
	return r.findCompany(ctx, "tax_number = ?", taxNumber)
}

func (r *GORMRepository) GetCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	return r.findCompany(ctx, "id = ?", id)
}

func (r *GORMRepository) findCompany(ctx context.Context, query string, arg string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where(query, arg).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get company", "error", err, "query", query)
		return nil, err
	}
	return &company, nil
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return translateError(err, "user already exists")
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
)

// Page selects a window of a listing, newest first.
type Page struct {
	Limit int
	Skip  int
}

// ErrWriteConflict marks a write that lost to a concurrent writer. The
// caller may reload and try again.
var ErrWriteConflict = errors.New("write conflict")

// WriteConflict returns a Conflict error whose chain holds ErrWriteConflict.
func WriteConflict(message string) error {
	return &apperr.AppError{Code: apperr.CodeConflict, Message: message, Cause: ErrWriteConflict}
}

// SessionStore persists interview and practice aggregates. Find methods
// return (nil, nil) when nothing matches. Save methods succeed only when the
// stored version still equals the aggregate's Version, bump it, and return
// WriteConflict otherwise.
type SessionStore interface {
	CreateInterview(ctx context.Context, interview *models.Interview) error
	FindInterviewByURL(ctx context.Context, uniqueURL string) (*models.Interview, error)
	FindInterviewByID(ctx context.Context, id string) (*models.Interview, error)
	SaveInterview(ctx context.Context, interview *models.Interview) error
	ListInterviews(ctx context.Context, companyID string, page Page) ([]models.Interview, int64, error)

	CreatePractice(ctx context.Context, practice *models.Practice) error
	FindPractice(ctx context.Context, id, userID string) (*models.Practice, error)
	LatestActivePractice(ctx context.Context, userID string) (*models.Practice, error)
	SavePractice(ctx context.Context, practice *models.Practice) error
	ListPractices(ctx context.Context, userID string, page Page) ([]models.Practice, int64, error)
}

// AccountStore persists the companies and users behind bearer tokens.
type AccountStore interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompanyByEmail(ctx context.Context, email string) (*models.Company, error)
	GetCompanyByTaxNumber(ctx context.Context, taxNumber string) (*models.Company, error)
	GetCompanyByID(ctx context.Context, id string) (*models.Company, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

var (
	_ SessionStore = (*GORMRepository)(nil)
	_ AccountStore = (*GORMRepository)(nil)
	_ SessionStore = (*MemoryStore)(nil)
	_ AccountStore = (*MemoryStore)(nil)
)

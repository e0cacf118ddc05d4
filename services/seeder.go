package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/krshsl/mulakat/backend/assessment"
	"github.com/krshsl/mulakat/backend/repository"
)

const (
	demoCompanyEmail = "demo-company@example.com"
	demoUserEmail    = "demo@example.com"
	demoPassword     = "password"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	accounts repository.AccountStore
	auth     *AuthService
	service  *assessment.Service
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(accounts repository.AccountStore, auth *AuthService, service *assessment.Service) *DatabaseSeeder {
	return &DatabaseSeeder{accounts: accounts, auth: auth, service: service}
}

// SeedDatabase seeds a demo company with one interview and a demo practice
// user (idempotent)
func (s *DatabaseSeeder) SeedDatabase(ctx context.Context) error {
	// The demo company is created last, so its presence means a finished run
	existing, err := s.accounts.GetCompanyByEmail(ctx, demoCompanyEmail)
	if err != nil {
		return fmt.Errorf("failed to check demo company: %w", err)
	}
	if existing != nil {
		slog.Info("Database seeding already completed, skipping")
		return nil
	}

	if err := s.seedUser(ctx); err != nil {
		slog.Error("Failed to seed user", "email", demoUserEmail, "error", err)
	}

	company, err := s.auth.RegisterCompany(ctx, CompanyRegistration{
		Name:      "Demo Company",
		TaxNumber: "0000000000",
		Email:     demoCompanyEmail,
		Phone:     "+90 000 000 00 00",
		Address:   "Istanbul",
		Password:  demoPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create demo company: %w", err)
	}

	interview, err := s.service.CreateInterview(ctx, company.ID, assessment.CreateInterviewInput{
		Name: "Backend Developer",
		Questions: []assessment.QuestionInput{
			{Text: "Tell us about a service you designed and operated."},
			{Text: "How do you find the cause of a slow database query?"},
			{Text: "How do you keep concurrent writes to shared data consistent?"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create demo interview: %w", err)
	}

	slog.Info("Database seeding completed successfully", "company_id", company.ID, "interview_url", interview.UniqueURL)
	return nil
}

// seedUser seeds the demo practice user (idempotent)
func (s *DatabaseSeeder) seedUser(ctx context.Context) error {
	existing, err := s.accounts.GetUserByEmail(ctx, demoUserEmail)
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", demoUserEmail, err)
	}
	if existing != nil {
		slog.Info("User already exists, skipping", "email", demoUserEmail)
		return nil
	}

	user, err := s.auth.RegisterUser(ctx, "demo", demoUserEmail, demoPassword)
	if err != nil {
		return err
	}

	if _, err := s.service.CreatePractice(ctx, user.ID, assessment.CreatePracticeInput{
		Name:      "Warm-up",
		Questions: []string{"Introduce yourself.", "Describe a bug you are proud of fixing."},
	}); err != nil {
		return fmt.Errorf("failed to create demo practice: %w", err)
	}

	slog.Info("Created user", "email", demoUserEmail)
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
)

// interviewRecord stores one interview document. Questions and participants
// are embedded jsonb so a whole aggregate is written by a single UPDATE.
type interviewRecord struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	CompanyID       string         `gorm:"type:uuid;not null;index"`
	Name            string         `gorm:"not null"`
	UniqueURL       string         `gorm:"size:64;uniqueIndex;not null"`
	Questions       datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	EmotionalWeight float64        `gorm:"not null;default:30"`
	TechnicalWeight float64        `gorm:"not null;default:70"`
	Participants    datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Status          string         `gorm:"not null;default:'active';check:status IN ('active', 'completed', 'archived')"`
	Version         int64          `gorm:"not null;default:1"`
	CreatedAt       time.Time      `gorm:"index"`
	UpdatedAt       time.Time
}

func (interviewRecord) TableName() string {
	return "interviews"
}

type practiceRecord struct {
	ID             string         `gorm:"type:uuid;primaryKey"`
	UserID         string         `gorm:"type:uuid;not null;index"`
	Name           string         `gorm:"not null"`
	Questions      datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	EmotionScore   float64        `gorm:"not null;default:0"`
	KnowledgeScore float64        `gorm:"not null;default:0"`
	Status         string         `gorm:"not null;default:'active';index;check:status IN ('active', 'completed', 'archived')"`
	Version        int64          `gorm:"not null;default:1"`
	CreatedAt      time.Time      `gorm:"index"`
	CompletedAt    *time.Time
}

func (practiceRecord) TableName() string {
	return "practices"
}

func toInterviewRecord(iv *models.Interview) (*interviewRecord, error) {
	questions, err := json.Marshal(iv.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}
	participants, err := json.Marshal(iv.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode participants: %w", err)
	}
	return &interviewRecord{
		ID:              iv.ID,
		CompanyID:       iv.CompanyID,
		Name:            iv.Name,
		UniqueURL:       iv.UniqueURL,
		Questions:       datatypes.JSON(questions),
		EmotionalWeight: iv.EmotionalWeight,
		TechnicalWeight: iv.TechnicalWeight,
		Participants:    datatypes.JSON(participants),
		Status:          string(iv.Status),
		Version:         iv.Version,
		CreatedAt:       iv.CreatedAt,
		UpdatedAt:       iv.UpdatedAt,
	}, nil
}

func (rec *interviewRecord) toModel() (*models.Interview, error) {
	if !models.Status(rec.Status).Valid() {
		return nil, fmt.Errorf("interview %s has unknown status %q", rec.ID, rec.Status)
	}
	iv := &models.Interview{
		ID:              rec.ID,
		CompanyID:       rec.CompanyID,
		Name:            rec.Name,
		UniqueURL:       rec.UniqueURL,
		EmotionalWeight: rec.EmotionalWeight,
		TechnicalWeight: rec.TechnicalWeight,
		Status:          models.Status(rec.Status),
		Version:         rec.Version,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if err := json.Unmarshal(rec.Questions, &iv.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if err := json.Unmarshal(rec.Participants, &iv.Participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}
	return iv, nil
}

func toPracticeRecord(p *models.Practice) (*practiceRecord, error) {
	questions, err := json.Marshal(p.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode practice questions: %w", err)
	}
	return &practiceRecord{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		Questions:      datatypes.JSON(questions),
		EmotionScore:   p.EmotionScore,
		KnowledgeScore: p.KnowledgeScore,
		Status:         string(p.Status),
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		CompletedAt:    p.CompletedAt,
	}, nil
}

func (rec *practiceRecord) toModel() (*models.Practice, error) {
	if !models.Status(rec.Status).Valid() {
		return nil, fmt.Errorf("practice %s has unknown status %q", rec.ID, rec.Status)
	}
	p := &models.Practice{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Name:           rec.Name,
		EmotionScore:   rec.EmotionScore,
		KnowledgeScore: rec.KnowledgeScore,
		Status:         models.Status(rec.Status),
		Version:        rec.Version,
		CreatedAt:      rec.CreatedAt,
		CompletedAt:    rec.CompletedAt,
	}
	if err := json.Unmarshal(rec.Questions, &p.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode practice questions: %w", err)
	}
	return p, nil
}

// versionedUpdate writes fields to the row of model identified by id only
// while its version still equals version, and bumps the version.
func (r *GORMRepository) versionedUpdate(ctx context.Context, model interface{}, id string, version int64, fields map[string]interface{}) *gorm.DB {
	fields["version"] = gorm.Expr("version + 1")
	return r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(fields)
}

// Interview operations

func (r *GORMRepository) CreateInterview(ctx context.Context, iv *models.Interview) error {
	iv.Version = 1
	rec, err := toInterviewRecord(iv)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		slog.Error("Failed to create interview", "error", err, "company_id", iv.CompanyID)
		if err = translateError(err, "interview url already in use"); apperr.IsConflict(err) {
			return WriteConflict("interview url already in use")
		}
		return err
	}
	iv.CreatedAt = rec.CreatedAt
	iv.UpdatedAt = rec.UpdatedAt
	slog.Info("Interview created", "interview_id", iv.ID, "company_id", iv.CompanyID)
	return nil
}

func (r *GORMRepository) FindInterviewByURL(ctx context.Context, uniqueURL string) (*models.Interview, error) {
	return r.findInterview(ctx, "unique_url = ?", uniqueURL)
}

func (r *GORMRepository) FindInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	return r.findInterview(ctx, "id = ?", id)
}

func (r *GORMRepository) findInterview(ctx context.Context, query, arg string) (*models.Interview, error) {
	var rec interviewRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get interview", "error", err, "query", query)
		return nil, err
	}
	return rec.toModel()
}

// SaveInterview writes the mutable parts of the document guarded by the
// version the caller loaded.
func (r *GORMRepository) SaveInterview(ctx context.Context, iv *models.Interview) error {
	rec, err := toInterviewRecord(iv)
	if err != nil {
		return err
	}
	now := time.Now()
	res := r.versionedUpdate(ctx, &interviewRecord{}, iv.ID, iv.Version, map[string]interface{}{
		"participants": rec.Participants,
		"status":       rec.Status,
		"updated_at":   now,
	})
	if res.Error != nil {
		slog.Error("Failed to save interview", "error", res.Error, "interview_id", iv.ID)
		return res.Error
	}
	if res.RowsAffected == 0 {
		slog.Warn("Interview save rejected, stale version", "interview_id", iv.ID, "version", iv.Version)
		return WriteConflict("interview was modified concurrently")
	}
	iv.Version++
	iv.UpdatedAt = now
	return nil
}

func (r *GORMRepository) ListInterviews(ctx context.Context, companyID string, page Page) ([]models.Interview, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&interviewRecord{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		slog.Error("Failed to count interviews", "error", err, "company_id", companyID)
		return nil, 0, err
	}

	var recs []interviewRecord
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&recs).Error
	if err != nil {
		slog.Error("Failed to list interviews", "error", err, "company_id", companyID)
		return nil, 0, err
	}

	interviews := make([]models.Interview, 0, len(recs))
	for i := range recs {
		iv, err := recs[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, total, nil
}

// Practice operations

func (r *GORMRepository) CreatePractice(ctx context.Context, p *models.Practice) error {
	p.Version = 1
	rec, err := toPracticeRecord(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		slog.Error("Failed to create practice", "error", err, "user_id", p.UserID)
		return translateError(err, "practice already exists")
	}
	p.CreatedAt = rec.CreatedAt
	slog.Info("Practice created", "practice_id", p.ID, "user_id", p.UserID)
	return nil
}

func (r *GORMRepository) FindPractice(ctx context.Context, id, userID string) (*models.Practice, error) {
	var rec practiceRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get practice", "error", err, "practice_id", id, "user_id", userID)
		return nil, err
	}
	return rec.toModel()
}

func (r *GORMRepository) LatestActivePractice(ctx context.Context, userID string) (*models.Practice, error) {
	var rec practiceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(models.StatusActive)).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get latest practice", "error", err, "user_id", userID)
		return nil, err
	}
	return rec.toModel()
}

func (r *GORMRepository) SavePractice(ctx context.Context, p *models.Practice) error {
	rec, err := toPracticeRecord(p)
	if err != nil {
		return err
	}
	res := r.versionedUpdate(ctx, &practiceRecord{}, p.ID, p.Version, map[string]interface{}{
		"questions":       rec.Questions,
		"emotion_score":   rec.EmotionScore,
		"knowledge_score": rec.KnowledgeScore,
		"status":          rec.Status,
		"completed_at":    rec.CompletedAt,
	})
	if res.Error != nil {
		slog.Error("Failed to save practice", "error", res.Error, "practice_id", p.ID)
		return res.Error
	}
	if res.RowsAffected == 0 {
		slog.Warn("Practice save rejected, stale version", "practice_id", p.ID, "version", p.Version)
		return WriteConflict("practice was modified concurrently")
	}
	p.Version++
	return nil
}

func (r *GORMRepository) ListPractices(ctx context.Context, userID string, page Page) ([]models.Practice, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&practiceRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		slog.Error("Failed to count practices", "error", err, "user_id", userID)
		return nil, 0, err
	}

	var recs []practiceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&recs).Error
	if err != nil {
		slog.Error("Failed to list practices", "error", err, "user_id", userID)
		return nil, 0, err
	}

	practices := make([]models.Practice, 0, len(recs))
	for i := range recs {
		p, err := recs[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		practices = append(practices, *p)
	}
	return practices, total, nil
}

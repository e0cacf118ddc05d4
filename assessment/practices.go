package assessment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
	"github.com/krshsl/mulakat/backend/repository"
)

// CreatePracticeInput describes a new practice. Seed scores default to 0.
type CreatePracticeInput struct {
	Name           string
	Questions      []string
	EmotionScore   float64
	KnowledgeScore float64
}

// AssessmentResult is returned after a practice question is assessed.
type AssessmentResult struct {
	Assessment     models.KnowledgeAssessment `json:"bilgiAnalizi"`
	KnowledgeScore float64                    `json:"practiceBilgiAnaliz"`
	Status         models.Status              `json:"status"`
	Practice       *models.Practice           `json:"-"`
}

// CreatePractice stores a new active practice for userID.
func (s *Service) CreatePractice(ctx context.Context, userID string, in CreatePracticeInput) (*models.Practice, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("practice name is required")
	}
	if len(in.Questions) == 0 {
		return nil, apperr.Validation("at least one question is required")
	}
	if in.EmotionScore < 0 || in.EmotionScore > 100 || in.KnowledgeScore < 0 || in.KnowledgeScore > 100 {
		return nil, apperr.Validation("scores must be between 0 and 100")
	}

	questions := make([]models.PracticeQuestion, 0, len(in.Questions))
	for _, text := range in.Questions {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, apperr.Validation("question text is required")
		}
		questions = append(questions, models.PracticeQuestion{
			Text:        text,
			EmotionData: []models.EmotionSample{},
		})
	}

	p := &models.Practice{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           name,
		Questions:      questions,
		EmotionScore:   in.EmotionScore,
		KnowledgeScore: in.KnowledgeScore,
		Status:         models.StatusActive,
		CreatedAt:      s.now(),
	}

	_, err := bounded(ctx, s.updateTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.CreatePractice(ctx, p)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "failed to create practice")
	}
	return p, nil
}

// ListPractices returns the user's practices, newest first.
func (s *Service) ListPractices(ctx context.Context, userID string, page repository.Page) ([]models.Practice, int64, error) {
	practices, total, err := s.store.ListPractices(ctx, userID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list practices")
	}
	return practices, total, nil
}

// GetPractice returns one of the user's practices.
func (s *Service) GetPractice(ctx context.Context, userID, id string) (*models.Practice, error) {
	p, err := s.store.FindPractice(ctx, id, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load practice")
	}
	if p == nil {
		return nil, apperr.NotFound("practice")
	}
	return p, nil
}

func (s *Service) latestPractice(ctx context.Context, userID string) (*models.Practice, error) {
	p, err := s.store.LatestActivePractice(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load practice")
	}
	if p == nil {
		return nil, apperr.NotFound("active practice")
	}
	return p, nil
}

// LatestQuestion returns question n (1-based) of the user's newest active
// practice together with that practice.
func (s *Service) LatestQuestion(ctx context.Context, userID string, n int) (*models.Practice, *models.PracticeQuestion, error) {
	p, err := s.latestPractice(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	q, err := practiceQuestion(p, n)
	if err != nil {
		return nil, nil, err
	}
	return p, q, nil
}

// RecordEmotionData stores an analyzer sample on question n of the newest
// active practice and refreshes the practice scores.
func (s *Service) RecordEmotionData(ctx context.Context, userID string, n int, in EmotionDataInput) (*models.Practice, *models.PracticeQuestion, error) {
	p, err := withRetry(ctx, s, "practice", userID, func(ctx context.Context) (*models.Practice, error) {
		p, err := s.latestPractice(ctx, userID)
		if err != nil {
			return nil, err
		}
		if _, err := RecordEmotionData(p, n, in, s.now()); err != nil {
			return nil, err
		}
		if err := s.store.SavePractice(ctx, p); err != nil {
			return nil, apperr.Wrap(err, "failed to save practice")
		}
		return p, nil
	})
	if err != nil {
		return nil, nil, err
	}

	q := p.Question(n)
	slog.Info("Emotion data recorded", "practice_id", p.ID, "question_number", n, "samples", len(q.EmotionData))
	return p, q, nil
}

// SubmitAssessment writes the knowledge assessment of question n of the
// newest active practice. The practice completes once every question has one.
func (s *Service) SubmitAssessment(ctx context.Context, userID string, n int, in AssessmentInput) (*AssessmentResult, error) {
	var completedNow bool
	result, err := withRetry(ctx, s, "practice", userID, func(ctx context.Context) (*AssessmentResult, error) {
		p, err := s.latestPractice(ctx, userID)
		if err != nil {
			return nil, err
		}
		q, transitioned, err := RecordAssessment(p, n, in, s.now())
		if err != nil {
			return nil, err
		}
		completedNow = transitioned

		out := &AssessmentResult{
			Assessment:     *q.KnowledgeAssessment,
			KnowledgeScore: p.KnowledgeScore,
			Status:         p.Status,
			Practice:       p,
		}
		if err := s.store.SavePractice(ctx, p); err != nil {
			return nil, apperr.Wrap(err, "failed to save practice")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Assessment recorded", "practice_id", result.Practice.ID, "question_number", n, "score", in.Score)
	if completedNow {
		slog.Info("Practice completed", "practice_id", result.Practice.ID, "knowledge_score", result.KnowledgeScore, "emotion_score", result.Practice.EmotionScore)
	}
	return result, nil
}

package assessment

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
	"github.com/krshsl/mulakat/backend/repository"
)

const (
	DefaultEmotionalWeight = 30
	DefaultTechnicalWeight = 70
	DefaultMaxScore        = 100
)

// QuestionInput is one interview question; a nil MaxScore means the default.
type QuestionInput struct {
	Text     string
	MaxScore *float64
}

// CreateInterviewInput describes a new interview. Nil weights take the
// 30/70 defaults; the two weights must add up to 100.
type CreateInterviewInput struct {
	Name            string
	Questions       []QuestionInput
	EmotionalWeight *float64
	TechnicalWeight *float64
}

// SubmissionResult is what a candidate gets back after a response is saved.
type SubmissionResult struct {
	Response      models.Response       `json:"response"`
	IsComplete    bool                  `json:"isComplete"`
	OverallScores *models.OverallScores `json:"overallScores,omitempty"`
}

// ParticipantSummary is one row of the company results view.
type ParticipantSummary struct {
	FirstName     string                `json:"firstName"`
	LastName      string                `json:"lastName"`
	Email         string                `json:"email"`
	Status        string                `json:"status"`
	RegisteredAt  time.Time             `json:"registeredAt"`
	CompletedAt   *time.Time            `json:"completedAt,omitempty"`
	OverallScores *models.OverallScores `json:"overallScores,omitempty"`
	ResponseCount int                   `json:"responseCount"`
}

// ResultsReport lists every participant of an interview.
type ResultsReport struct {
	Name             string               `json:"mulakatAdi"`
	QuestionCount    int                  `json:"questionCount"`
	ParticipantCount int                  `json:"participantCount"`
	Results          []ParticipantSummary `json:"results"`
}

const (
	ParticipantCompleted  = "completed"
	ParticipantInProgress = "in_progress"
)

func (in CreateInterviewInput) build(now time.Time) (*models.Interview, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("interview name is required")
	}
	if len(in.Questions) == 0 {
		return nil, apperr.Validation("at least one question is required")
	}

	emotional, technical := float64(DefaultEmotionalWeight), float64(DefaultTechnicalWeight)
	if in.EmotionalWeight != nil {
		emotional = *in.EmotionalWeight
	}
	if in.TechnicalWeight != nil {
		technical = *in.TechnicalWeight
	}
	if emotional < 0 || emotional > 100 || technical < 0 || technical > 100 {
		return nil, apperr.Validation("weights must be between 0 and 100")
	}
	if math.Abs(emotional+technical-100) > 1e-9 {
		return nil, apperr.Validation("emotional and technical weights must add up to 100")
	}

	questions := make([]models.Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, apperr.Validation("question text is required")
		}
		maxScore := float64(DefaultMaxScore)
		if q.MaxScore != nil {
			maxScore = *q.MaxScore
		}
		if maxScore <= 0 {
			return nil, apperr.Validation("question maxScore must be positive")
		}
		questions = append(questions, models.Question{
			ID:       uuid.New().String(),
			Text:     text,
			MaxScore: maxScore,
		})
	}

	return &models.Interview{
		ID:              uuid.New().String(),
		Name:            name,
		Questions:       questions,
		EmotionalWeight: emotional,
		TechnicalWeight: technical,
		Participants:    []models.Participant{},
		Status:          models.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// CreateInterview validates the input and stores a new active interview
// with a fresh capability token.
func (s *Service) CreateInterview(ctx context.Context, companyID string, in CreateInterviewInput) (*models.Interview, error) {
	iv, err := in.build(s.now())
	if err != nil {
		return nil, err
	}
	iv.CompanyID = companyID

	return withRetry(ctx, s, "interview", iv.ID, func(ctx context.Context) (*models.Interview, error) {
		token, err := NewCapabilityToken()
		if err != nil {
			return nil, apperr.Wrap(err, "failed to generate interview url")
		}
		iv.UniqueURL = token
		if err := s.store.CreateInterview(ctx, iv); err != nil {
			return nil, apperr.Wrap(err, "failed to create interview")
		}
		return iv, nil
	})
}

func (s *Service) loadInterview(ctx context.Context, uniqueURL string) (*models.Interview, error) {
	iv, err := s.store.FindInterviewByURL(ctx, uniqueURL)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load interview")
	}
	if iv == nil {
		return nil, apperr.NotFound("interview")
	}
	return iv, nil
}

// GetInterview loads an interview by its capability token.
func (s *Service) GetInterview(ctx context.Context, uniqueURL string) (*models.Interview, error) {
	return bounded(ctx, s.updateTimeout, func(ctx context.Context) (*models.Interview, error) {
		return s.loadInterview(ctx, uniqueURL)
	})
}

// ListInterviews returns the company's interviews, newest first.
func (s *Service) ListInterviews(ctx context.Context, companyID string, page repository.Page) ([]models.Interview, int64, error) {
	interviews, total, err := s.store.ListInterviews(ctx, companyID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list interviews")
	}
	return interviews, total, nil
}

// RegisterParticipant adds a candidate through the interview's capability token.
func (s *Service) RegisterParticipant(ctx context.Context, uniqueURL string, in ParticipantInput) (*models.Participant, error) {
	participant, err := withRetry(ctx, s, "interview", uniqueURL, func(ctx context.Context) (models.Participant, error) {
		iv, err := s.loadInterview(ctx, uniqueURL)
		if err != nil {
			return models.Participant{}, err
		}
		p, err := RegisterParticipant(iv, uuid.New().String(), in, s.now())
		if err != nil {
			return models.Participant{}, err
		}
		registered := *p
		if err := s.store.SaveInterview(ctx, iv); err != nil {
			return models.Participant{}, apperr.Wrap(err, "failed to save interview")
		}
		return registered, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Participant registered", "interview_url", uniqueURL, "participant_email", participant.Email)
	s.publish(uniqueURL, Event{Type: EventParticipantRegistered, Email: participant.Email})
	return &participant, nil
}

// SubmitResponse appends a response for a participant and, when it is the
// last one, completes the participant and stores the overall scores.
func (s *Service) SubmitResponse(ctx context.Context, uniqueURL string, sub Submission) (*SubmissionResult, error) {
	if err := sub.validate(); err != nil {
		return nil, err
	}

	var completedNow bool
	result, err := withRetry(ctx, s, "interview", uniqueURL, func(ctx context.Context) (*SubmissionResult, error) {
		iv, err := s.loadInterview(ctx, uniqueURL)
		if err != nil {
			return nil, err
		}
		now := s.now()
		p, resp, err := AppendResponse(iv, sub, now)
		if err != nil {
			return nil, err
		}
		completedNow, err = EvaluateParticipant(iv, p, now)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to compute overall scores")
		}

		out := &SubmissionResult{
			Response:      *resp,
			IsComplete:    p.Completed(),
			OverallScores: p.OverallScores,
		}
		if err := s.store.SaveInterview(ctx, iv); err != nil {
			return nil, apperr.Wrap(err, "failed to save interview")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Response recorded", "interview_url", uniqueURL, "participant_email", sub.Email, "question_number", sub.QuestionNumber)
	s.publish(uniqueURL, Event{Type: EventResponseRecorded, Email: sub.Email, Payload: map[string]int{"questionNumber": sub.QuestionNumber}})
	if completedNow {
		slog.Info("Participant completed", "interview_url", uniqueURL, "participant_email", sub.Email, "final_score", result.OverallScores.FinalScore)
		s.publish(uniqueURL, Event{Type: EventParticipantCompleted, Email: sub.Email, Payload: result.OverallScores})
	}
	return result, nil
}

// ParticipantResult returns one participant with responses and scores.
func (s *Service) ParticipantResult(ctx context.Context, uniqueURL, email string) (*models.Participant, error) {
	iv, err := s.GetInterview(ctx, uniqueURL)
	if err != nil {
		return nil, err
	}
	p := iv.FindParticipant(email)
	if p == nil {
		return nil, apperr.NotFound("participant")
	}
	return p, nil
}

// OwnedInterview loads an interview and checks that companyID owns it.
func (s *Service) OwnedInterview(ctx context.Context, uniqueURL, companyID string) (*models.Interview, error) {
	iv, err := s.GetInterview(ctx, uniqueURL)
	if err != nil {
		return nil, err
	}
	if iv.CompanyID != companyID {
		return nil, apperr.Forbidden("interview belongs to another company")
	}
	return iv, nil
}

// InterviewResults summarizes every participant for the owning company.
func (s *Service) InterviewResults(ctx context.Context, uniqueURL, companyID string) (*ResultsReport, error) {
	iv, err := s.OwnedInterview(ctx, uniqueURL, companyID)
	if err != nil {
		return nil, err
	}
	return Summarize(iv)
}

// Summarize builds the results view of an interview.
func Summarize(iv *models.Interview) (*ResultsReport, error) {
	report := &ResultsReport{
		Name:             iv.Name,
		QuestionCount:    len(iv.Questions),
		ParticipantCount: len(iv.Participants),
		Results:          make([]ParticipantSummary, 0, len(iv.Participants)),
	}
	for i := range iv.Participants {
		p := &iv.Participants[i]
		var row ParticipantSummary
		if err := copier.Copy(&row, p); err != nil {
			return nil, apperr.Wrap(err, "failed to build results")
		}
		row.ResponseCount = len(p.Responses)
		row.Status = ParticipantInProgress
		if p.Completed() {
			row.Status = ParticipantCompleted
		}
		report.Results = append(report.Results, row)
	}
	return report, nil
}

// ArchiveInterview moves an interview owned by companyID to archived.
// Archiving an archived interview is a no-op.
func (s *Service) ArchiveInterview(ctx context.Context, uniqueURL, companyID string) (*models.Interview, error) {
	var changed bool
	iv, err := withRetry(ctx, s, "interview", uniqueURL, func(ctx context.Context) (*models.Interview, error) {
		iv, err := s.loadInterview(ctx, uniqueURL)
		if err != nil {
			return nil, err
		}
		if iv.CompanyID != companyID {
			return nil, apperr.Forbidden("interview belongs to another company")
		}
		if iv.Status == models.StatusArchived {
			changed = false
			return iv, nil
		}
		iv.Status = models.StatusArchived
		if err := s.store.SaveInterview(ctx, iv); err != nil {
			return nil, apperr.Wrap(err, "failed to save interview")
		}
		changed = true
		return iv, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		slog.Info("Interview archived", "interview_url", uniqueURL, "company_id", companyID)
		s.publish(uniqueURL, Event{Type: EventInterviewArchived})
	}
	return iv, nil
}

package assessment

import (
	"time"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
)

// ParticipantInput is a candidate registration.
type ParticipantInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Submission is one candidate answer with its externally computed analysis.
// A nil analysis means the caller did not send it.
type Submission struct {
	Email             string
	QuestionID        string
	QuestionNumber    int
	QuestionText      string
	SpeechToText      string
	EmotionAnalysis   *models.EmotionAnalysis
	KnowledgeAnalysis *models.KnowledgeAnalysis
}

func (s Submission) validate() error {
	if s.SpeechToText == "" || s.EmotionAnalysis == nil || s.KnowledgeAnalysis == nil {
		return apperr.Validation("missing required fields")
	}
	return nil
}

func ensureOpen(iv *models.Interview) error {
	if iv.Status == models.StatusArchived {
		return apperr.Validation("interview is archived")
	}
	return nil
}

// RegisterParticipant adds a candidate to the interview. Email is unique
// within one interview.
func RegisterParticipant(iv *models.Interview, id string, in ParticipantInput, now time.Time) (*models.Participant, error) {
	if err := ensureOpen(iv); err != nil {
		return nil, err
	}
	if iv.FindParticipant(in.Email) != nil {
		return nil, apperr.Conflict("email already registered for this interview")
	}

	iv.Participants = append(iv.Participants, models.Participant{
		ID:           id,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		RegisteredAt: now,
		Responses:    []models.Response{},
	})
	return &iv.Participants[len(iv.Participants)-1], nil
}

// AppendResponse records a submission for the participant with sub.Email.
// Responses keep arrival order. A second response for a questionNumber the
// participant already answered is rejected; nothing else about the number is
// checked. On error the interview is left untouched.
func AppendResponse(iv *models.Interview, sub Submission, now time.Time) (*models.Participant, *models.Response, error) {
	if err := sub.validate(); err != nil {
		return nil, nil, err
	}
	if err := ensureOpen(iv); err != nil {
		return nil, nil, err
	}
	p := iv.FindParticipant(sub.Email)
	if p == nil {
		return nil, nil, apperr.NotFound("participant")
	}
	for _, r := range p.Responses {
		if r.QuestionNumber == sub.QuestionNumber {
			return nil, nil, apperr.Validation("question already answered")
		}
	}

	p.Responses = append(p.Responses, models.Response{
		QuestionID:        sub.QuestionID,
		QuestionNumber:    sub.QuestionNumber,
		QuestionText:      sub.QuestionText,
		SpeechToText:      sub.SpeechToText,
		EmotionAnalysis:   *sub.EmotionAnalysis,
		KnowledgeAnalysis: *sub.KnowledgeAnalysis,
		SubmittedAt:       now,
	})
	return p, &p.Responses[len(p.Responses)-1], nil
}

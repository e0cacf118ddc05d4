package assessment

import (
	"errors"
	"time"

	"github.com/krshsl/mulakat/backend/models"
	"github.com/krshsl/mulakat/backend/scoring"
)

// EvaluateParticipant completes p once it holds exactly one response per
// interview question. The transition happens at most once: completedAt and
// overallScores are written together and never touched again. It reports
// whether this call performed the transition.
func EvaluateParticipant(iv *models.Interview, p *models.Participant, now time.Time) (bool, error) {
	if p.CompletedAt != nil {
		return false, nil
	}
	if len(p.Responses) != len(iv.Questions) {
		return false, nil
	}

	scores, err := scoring.Participant(p.Responses, scoring.Weights{
		Emotional: iv.EmotionalWeight,
		Technical: iv.TechnicalWeight,
	})
	if err != nil {
		return false, err
	}

	completedAt := now
	p.CompletedAt = &completedAt
	p.OverallScores = &scores
	return true, nil
}

// EvaluatePractice moves an active practice to completed when every question
// is completed. It reports whether this call performed the transition.
func EvaluatePractice(p *models.Practice, now time.Time) bool {
	if p.Status != models.StatusActive || len(p.Questions) == 0 {
		return false
	}
	for _, q := range p.Questions {
		if !q.Completed {
			return false
		}
	}
	completedAt := now
	p.Status = models.StatusCompleted
	p.CompletedAt = &completedAt
	return true
}

// RecomputePracticeScores refreshes the practice level emotion and knowledge
// scores. A score with nothing to average keeps its stored value.
func RecomputePracticeScores(p *models.Practice) error {
	knowledge, err := scoring.PracticeKnowledge(p.Questions)
	switch {
	case err == nil:
		p.KnowledgeScore = knowledge
	case !errors.Is(err, scoring.ErrInsufficientData):
		return err
	}

	emotion, err := scoring.PracticeEmotion(p.Questions)
	switch {
	case err == nil:
		p.EmotionScore = emotion
	case !errors.Is(err, scoring.ErrInsufficientData):
		return err
	}
	return nil
}

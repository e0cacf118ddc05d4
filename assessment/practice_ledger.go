package assessment

import (
	"time"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
)

// EmotionDataInput is one analyzer sample for a practice question.
type EmotionDataInput struct {
	FaceEmotions    []string
	AudioEmotions   []models.AudioEmotion
	SpeechText      string
	AnalysisResults *models.AnalysisResults
	TotalAnalyses   int
	MatchCount      int
}

// AssessmentInput is the knowledge assessment of one practice question.
type AssessmentInput struct {
	QuestionID string
	Report     string
	Score      float64
}

func practiceQuestion(p *models.Practice, n int) (*models.PracticeQuestion, error) {
	q := p.Question(n)
	if q == nil {
		return nil, apperr.NotFound("question")
	}
	return q, nil
}

// RecordEmotionData appends a raw sample to question n (1-based) and replaces
// its latest analysis results when given. Zero totals keep the stored values.
// This path never completes a question.
func RecordEmotionData(p *models.Practice, n int, in EmotionDataInput, now time.Time) (*models.PracticeQuestion, error) {
	q, err := practiceQuestion(p, n)
	if err != nil {
		return nil, err
	}

	q.EmotionData = append(q.EmotionData, models.EmotionSample{
		FaceEmotions:  in.FaceEmotions,
		AudioEmotions: in.AudioEmotions,
		SpeechText:    in.SpeechText,
		Timestamp:     now,
	})
	if in.AnalysisResults != nil {
		results := *in.AnalysisResults
		q.AnalysisResults = &results
	}
	if in.TotalAnalyses != 0 {
		q.TotalAnalyses = in.TotalAnalyses
	}
	if in.MatchCount != 0 {
		q.MatchCount = in.MatchCount
	}

	if err := RecomputePracticeScores(p); err != nil {
		return nil, err
	}
	return q, nil
}

// RecordAssessment writes the knowledge assessment of question n, marks it
// completed, refreshes practice scores and evaluates practice completion.
// It reports whether the practice transitioned to completed.
func RecordAssessment(p *models.Practice, n int, in AssessmentInput, now time.Time) (*models.PracticeQuestion, bool, error) {
	if in.Score < 0 || in.Score > 100 {
		return nil, false, apperr.Validation("totalScore must be between 0 and 100")
	}
	q, err := practiceQuestion(p, n)
	if err != nil {
		return nil, false, err
	}

	q.KnowledgeAssessment = &models.KnowledgeAssessment{
		Score:          in.Score,
		Report:         in.Report,
		EvaluationText: in.Report,
		Timestamp:      now,
	}
	q.Completed = true

	if err := RecomputePracticeScores(p); err != nil {
		return nil, false, err
	}
	return q, EvaluatePractice(p, now), nil
}

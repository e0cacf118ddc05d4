// Package scoring rolls per-question analysis scores up into participant and
// practice level scores. Every function here is pure.
package scoring

import (
	"errors"

	"github.com/montanaflynn/stats"

	"github.com/krshsl/mulakat/backend/models"
)

// ErrInsufficientData is returned when there is nothing to average.
var ErrInsufficientData = errors.New("scoring: insufficient data")

// Weights are percentages applied to the emotion and knowledge averages.
type Weights struct {
	Emotional float64
	Technical float64
}

// mean wraps stats.Mean so that an empty input yields ErrInsufficientData
// instead of the library's own sentinel.
func mean(data stats.Float64Data) (float64, error) {
	if data.Len() == 0 {
		return 0, ErrInsufficientData
	}
	m, err := stats.Mean(data)
	if err != nil {
		return 0, err
	}
	return m, nil
}

// Participant computes the overall scores over the full response list:
// the arithmetic means of generalScore and totalScore, combined as
// avgEmotion*Emotional/100 + avgKnowledge*Technical/100.
func Participant(responses []models.Response, w Weights) (models.OverallScores, error) {
	if len(responses) == 0 {
		return models.OverallScores{}, ErrInsufficientData
	}

	emotion := make(stats.Float64Data, 0, len(responses))
	knowledge := make(stats.Float64Data, 0, len(responses))
	for _, r := range responses {
		emotion = append(emotion, r.EmotionAnalysis.GeneralScore)
		knowledge = append(knowledge, r.KnowledgeAnalysis.TotalScore)
	}

	avgEmotion, err := mean(emotion)
	if err != nil {
		return models.OverallScores{}, err
	}
	avgKnowledge, err := mean(knowledge)
	if err != nil {
		return models.OverallScores{}, err
	}

	return models.OverallScores{
		TotalEmotionScore:   avgEmotion,
		TotalKnowledgeScore: avgKnowledge,
		FinalScore:          avgEmotion*w.Emotional/100 + avgKnowledge*w.Technical/100,
	}, nil
}

// PracticeKnowledge averages the assessment score of completed questions.
func PracticeKnowledge(questions []models.PracticeQuestion) (float64, error) {
	data := make(stats.Float64Data, 0, len(questions))
	for _, q := range questions {
		if q.Completed && q.KnowledgeAssessment != nil {
			data = append(data, q.KnowledgeAssessment.Score)
		}
	}
	return mean(data)
}

// PracticeEmotion averages generalScore over questions that have analysis
// results.
func PracticeEmotion(questions []models.PracticeQuestion) (float64, error) {
	data := make(stats.Float64Data, 0, len(questions))
	for _, q := range questions {
		if q.AnalysisResults != nil {
			data = append(data, q.AnalysisResults.GeneralScore)
		}
	}
	return mean(data)
}

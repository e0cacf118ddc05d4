package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krshsl/mulakat/backend/models"
)

func response(general, total float64) models.Response {
	return models.Response{
		EmotionAnalysis:   models.EmotionAnalysis{GeneralScore: general},
		KnowledgeAnalysis: models.KnowledgeAnalysis{TotalScore: total},
	}
}

func TestParticipant(t *testing.T) {
	tests := []struct {
		name      string
		responses []models.Response
		weights   Weights
		want      models.OverallScores
	}{
		{
			name:      "single response 30/70",
			responses: []models.Response{response(80, 60)},
			weights:   Weights{Emotional: 30, Technical: 70},
			want:      models.OverallScores{TotalEmotionScore: 80, TotalKnowledgeScore: 60, FinalScore: 66},
		},
		{
			name:      "averages before weighting",
			responses: []models.Response{response(50, 100), response(70, 40), response(90, 70)},
			weights:   Weights{Emotional: 50, Technical: 50},
			want:      models.OverallScores{TotalEmotionScore: 70, TotalKnowledgeScore: 70, FinalScore: 70},
		},
		{
			name:      "technical only",
			responses: []models.Response{response(10, 80), response(30, 90)},
			weights:   Weights{Emotional: 0, Technical: 100},
			want:      models.OverallScores{TotalEmotionScore: 20, TotalKnowledgeScore: 85, FinalScore: 85},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Participant(tt.responses, tt.weights)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.TotalEmotionScore, got.TotalEmotionScore, 1e-9)
			assert.InDelta(t, tt.want.TotalKnowledgeScore, got.TotalKnowledgeScore, 1e-9)
			assert.InDelta(t, tt.want.FinalScore, got.FinalScore, 1e-9)
		})
	}
}

func TestParticipantOrderIndependent(t *testing.T) {
	w := Weights{Emotional: 40, Technical: 60}
	a, err := Participant([]models.Response{response(10, 20), response(30, 40)}, w)
	require.NoError(t, err)
	b, err := Participant([]models.Response{response(30, 40), response(10, 20)}, w)
	require.NoError(t, err)
	assert.InDelta(t, a.FinalScore, b.FinalScore, 1e-9)
}

func TestEmptyInputs(t *testing.T) {
	_, err := Participant(nil, Weights{Emotional: 30, Technical: 70})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = PracticeKnowledge([]models.PracticeQuestion{{Text: "unanswered"}})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = PracticeEmotion(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPracticeScores(t *testing.T) {
	questions := []models.PracticeQuestion{
		{
			Completed:           true,
			KnowledgeAssessment: &models.KnowledgeAssessment{Score: 90},
			AnalysisResults:     &models.AnalysisResults{GeneralScore: 40},
		},
		{
			// assessed but flag not yet set: ignored for knowledge
			KnowledgeAssessment: &models.KnowledgeAssessment{Score: 10},
			AnalysisResults:     &models.AnalysisResults{GeneralScore: 60},
		},
		{
			Completed:           true,
			KnowledgeAssessment: &models.KnowledgeAssessment{Score: 70},
		},
	}

	knowledge, err := PracticeKnowledge(questions)
	require.NoError(t, err)
	assert.InDelta(t, 80, knowledge, 1e-9)

	emotion, err := PracticeEmotion(questions)
	require.NoError(t, err)
	assert.InDelta(t, 50, emotion, 1e-9)
}

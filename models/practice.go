package models

import "time"

// Practice is a self-training session owned by a user. JSON names keep the
// field names existing clients read.
type Practice struct {
	ID             string             `json:"id"`
	UserID         string             `json:"userId"`
	Name           string             `json:"pratikAdi"`
	Questions      []PracticeQuestion `json:"questions"`
	EmotionScore   float64            `json:"duyguAnaliz"`
	KnowledgeScore float64            `json:"bilgiAnaliz"`
	Status         Status             `json:"status"`
	Version        int64              `json:"-"`
	CreatedAt      time.Time          `json:"createdAt"`
	CompletedAt    *time.Time         `json:"completedAt,omitempty"`
}

type PracticeQuestion struct {
	Text                string               `json:"text"`
	EmotionData         []EmotionSample      `json:"emotionData"`
	AnalysisResults     *AnalysisResults     `json:"analysisResults,omitempty"`
	KnowledgeAssessment *KnowledgeAssessment `json:"bilgiAnalizi,omitempty"`
	TotalAnalyses       int                  `json:"totalAnalyses"`
	MatchCount          int                  `json:"matchCount"`
	Completed           bool                 `json:"completed"`
}

// EmotionSample is one raw analyzer sample recorded for a practice question.
type EmotionSample struct {
	FaceEmotions  []string       `json:"faceEmotions"`
	AudioEmotions []AudioEmotion `json:"audioEmotions"`
	SpeechText    string         `json:"speechText"`
	Timestamp     time.Time      `json:"timestamp"`
}

type AudioEmotion struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

type AnalysisResults struct {
	StressScore  float64 `json:"stress_score"`
	MatchBonus   float64 `json:"match_bonus"`
	GeneralScore float64 `json:"general_score"`
}

type KnowledgeAssessment struct {
	Score          float64   `json:"score"`
	Report         string    `json:"report"`
	EvaluationText string    `json:"evaluationText"`
	Timestamp      time.Time `json:"timestamp"`
}

// Question returns the 1-based question n, or nil when out of range.
func (p *Practice) Question(n int) *PracticeQuestion {
	if n < 1 || n > len(p.Questions) {
		return nil
	}
	return &p.Questions[n-1]
}

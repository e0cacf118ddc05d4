package models

import "time"

// Interview is owned by a company and reached by candidates through UniqueURL.
type Interview struct {
	ID              string        `json:"id"`
	CompanyID       string        `json:"companyId"`
	Name            string        `json:"mulakatAdi"`
	UniqueURL       string        `json:"uniqueUrl"`
	Questions       []Question    `json:"questions"`
	EmotionalWeight float64       `json:"duygusalDegerlendirme"`
	TechnicalWeight float64       `json:"teknikDegerlendirme"`
	Participants    []Participant `json:"participants"`
	Status          Status        `json:"status"`
	Version         int64         `json:"-"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type Question struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	MaxScore float64 `json:"maxScore"`
}

// Participant is a candidate registered against one interview.
type Participant struct {
	ID            string         `json:"id"`
	FirstName     string         `json:"firstName"`
	LastName      string         `json:"lastName"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	RegisteredAt  time.Time      `json:"registeredAt"`
	Responses     []Response     `json:"responses"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	OverallScores *OverallScores `json:"overallScores,omitempty"`
}

// Completed reports whether the participant reached the terminal state.
func (p *Participant) Completed() bool {
	return p.CompletedAt != nil
}

type Response struct {
	QuestionID        string            `json:"questionId"`
	QuestionNumber    int               `json:"questionNumber"`
	QuestionText      string            `json:"questionText"`
	SpeechToText      string            `json:"speechToText"`
	EmotionAnalysis   EmotionAnalysis   `json:"emotionAnalysis"`
	KnowledgeAnalysis KnowledgeAnalysis `json:"knowledgeAnalysis"`
	SubmittedAt       time.Time         `json:"submittedAt"`
}

type EmotionAnalysis struct {
	StressScore   float64 `json:"stressScore"`
	MatchBonus    float64 `json:"matchBonus"`
	GeneralScore  float64 `json:"generalScore"`
	TotalAnalyses int     `json:"totalAnalyses"`
	MatchCount    int     `json:"matchCount"`
}

type KnowledgeAnalysis struct {
	EvaluationText string  `json:"evaluationText"`
	TotalScore     float64 `json:"totalScore"`
	ReportText     string  `json:"reportText"`
}

type OverallScores struct {
	TotalEmotionScore   float64 `json:"totalEmotionScore"`
	TotalKnowledgeScore float64 `json:"totalKnowledgeScore"`
	FinalScore          float64 `json:"finalScore"`
}

// FindParticipant returns the participant registered with email, or nil.
func (i *Interview) FindParticipant(email string) *Participant {
	for idx := range i.Participants {
		if i.Participants[idx].Email == email {
			return &i.Participants[idx]
		}
	}
	return nil
}

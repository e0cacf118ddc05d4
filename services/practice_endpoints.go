package services

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/assessment"
	"github.com/krshsl/mulakat/backend/models"
)

type PracticeEndpoints struct {
	service *assessment.Service
	auth    *AuthService
	archive *AssessmentArchive
}

func NewPracticeEndpoints(service *assessment.Service, auth *AuthService, archive *AssessmentArchive) *PracticeEndpoints {
	return &PracticeEndpoints{
		service: service,
		auth:    auth,
		archive: archive,
	}
}

type PracticeQuestionRequest struct {
	Text string `json:"text" validate:"required"`
}

type CreatePracticeRequest struct {
	Name           string                    `json:"pratikAdi" validate:"required"`
	Questions      []PracticeQuestionRequest `json:"questions" validate:"required,min=1,dive"`
	EmotionScore   float64                   `json:"duyguAnaliz" validate:"min=0,max=100"`
	KnowledgeScore float64                   `json:"bilgiAnaliz" validate:"min=0,max=100"`
}

type EmotionDataRequest struct {
	FaceEmotions    []string                `json:"faceEmotions"`
	AudioEmotions   []models.AudioEmotion   `json:"audioEmotions"`
	SpeechText      string                  `json:"speechText"`
	AnalysisResults *models.AnalysisResults `json:"analysisResults"`
	TotalAnalyses   int                     `json:"totalAnalyses" validate:"min=0"`
	MatchCount      int                     `json:"matchCount" validate:"min=0"`
}

type AssessmentRequest struct {
	AssessmentReport string  `json:"assessmentReport"`
	TotalScore       float64 `json:"totalScore" validate:"min=0,max=100"`
	QuestionID       string  `json:"questionId"`
}

func (e *PracticeEndpoints) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(e.auth.Middleware)
		r.Use(RequireKind(KindUser))

		r.Route("/practices", func(r chi.Router) {
			r.Post("/", e.CreatePracticeHandler)
			r.Get("/", e.ListPracticesHandler)
			r.Get("/{id}", e.GetPracticeHandler)
			r.Get("/{id}/assessments", e.ArchivedAssessmentsHandler)
		})

		r.Route("/latest-practice", func(r chi.Router) {
			r.Get("/questions/{n}", e.LatestQuestionHandler)
			r.Post("/emotion-data/{n}", e.EmotionDataHandler)
			r.Post("/assessment/{n}", e.SubmitAssessmentHandler)
			r.Get("/assessment/{n}", e.GetAssessmentHandler)
		})
	})
}

// questionNumber reads the 1-based {n} path parameter. Anything that is not
// a number is out of range.
func questionNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		return 0, apperr.NotFound("question")
	}
	return n, nil
}

func (e *PracticeEndpoints) CreatePracticeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req CreatePracticeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := assessment.CreatePracticeInput{
		Name:           req.Name,
		EmotionScore:   req.EmotionScore,
		KnowledgeScore: req.KnowledgeScore,
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, q.Text)
	}

	practice, err := e.service.CreatePractice(r.Context(), identity.ID, in)
	if err != nil {
		slog.Error("Failed to create practice", "error", err, "user_id", identity.ID)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Practice created",
		"practice": practice,
	})
}

func (e *PracticeEndpoints) ListPracticesHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	page := pageFromQuery(r)

	practices, total, err := e.service.ListPractices(r.Context(), identity.ID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	var emotion, knowledge float64
	if len(practices) > 0 && page.Skip == 0 {
		emotion, knowledge = practices[0].EmotionScore, practices[0].KnowledgeScore
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"practices":   practices,
		"total":       total,
		"hasMore":     hasMore(page, len(practices), total),
		"duyguAnaliz": emotion,
		"bilgiAnaliz": knowledge,
	})
}

func (e *PracticeEndpoints) GetPracticeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	practice, err := e.service.GetPractice(r.Context(), identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, practice)
}

func (e *PracticeEndpoints) LatestQuestionHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	n, err := questionNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	practice, question, err := e.service.LatestQuestion(r.Context(), identity.ID, n)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"practiceId": practice.ID,
		"question": map[string]interface{}{
			"number":          n,
			"text":            question.Text,
			"emotionData":     question.EmotionData,
			"analysisResults": question.AnalysisResults,
			"bilgiAnalizi":    question.KnowledgeAssessment,
			"totalAnalyses":   question.TotalAnalyses,
			"matchCount":      question.MatchCount,
			"completed":       question.Completed,
		},
		"totalQuestions": len(practice.Questions),
	})
}

func (e *PracticeEndpoints) EmotionDataHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	n, err := questionNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req EmotionDataRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	practice, question, err := e.service.RecordEmotionData(r.Context(), identity.ID, n, assessment.EmotionDataInput{
		FaceEmotions:    req.FaceEmotions,
		AudioEmotions:   req.AudioEmotions,
		SpeechText:      req.SpeechText,
		AnalysisResults: req.AnalysisResults,
		TotalAnalyses:   req.TotalAnalyses,
		MatchCount:      req.MatchCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	var latest *models.EmotionSample
	if len(question.EmotionData) > 0 {
		latest = &question.EmotionData[len(question.EmotionData)-1]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Emotion data recorded",
		"practiceId":     practice.ID,
		"questionNumber": n,
		"latestData": map[string]interface{}{
			"emotionData":     latest,
			"analysisResults": question.AnalysisResults,
			"totalAnalyses":   question.TotalAnalyses,
			"matchCount":      question.MatchCount,
		},
		"duyguAnaliz": practice.EmotionScore,
	})
}

func (e *PracticeEndpoints) SubmitAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	n, err := questionNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req AssessmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := e.service.SubmitAssessment(r.Context(), identity.ID, n, assessment.AssessmentInput{
		QuestionID: req.QuestionID,
		Report:     req.AssessmentReport,
		Score:      req.TotalScore,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if e.archive != nil {
		if err := e.archive.Save(r.Context(), AssessmentSnapshot{
			PracticeID:       result.Practice.ID,
			QuestionID:       req.QuestionID,
			QuestionNumber:   n,
			UserID:           identity.ID,
			AssessmentReport: req.AssessmentReport,
			TotalScore:       req.TotalScore,
			Timestamp:        result.Assessment.Timestamp,
		}); err != nil {
			slog.Warn("Failed to archive assessment", "error", err, "practice_id", result.Practice.ID)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Assessment recorded",
		"data": map[string]interface{}{
			"practiceId":          result.Practice.ID,
			"questionNumber":      n,
			"bilgiAnalizi":        result.Assessment,
			"practiceBilgiAnaliz": result.KnowledgeScore,
			"status":              result.Status,
		},
	})
}

func (e *PracticeEndpoints) GetAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	n, err := questionNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	practice, question, err := e.service.LatestQuestion(r.Context(), identity.ID, n)
	if err != nil {
		writeError(w, err)
		return
	}

	var report interface{}
	var score float64
	if ka := question.KnowledgeAssessment; ka != nil {
		report, score = ka.EvaluationText, ka.Score
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"practiceId":          practice.ID,
		"questionNumber":      n,
		"bilgiAnalizi":        question.KnowledgeAssessment,
		"assessmentReport":    report,
		"totalScore":          score,
		"practiceBilgiAnaliz": practice.KnowledgeScore,
		"completed":           question.Completed,
		"practiceStatus":      practice.Status,
	})
}

func (e *PracticeEndpoints) ArchivedAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	practice, err := e.service.GetPractice(r.Context(), identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	snapshots := []AssessmentSnapshot{}
	if e.archive != nil {
		found, err := e.archive.List(practice.ID)
		if err != nil {
			slog.Error("Failed to list archived assessments", "error", err, "practice_id", practice.ID)
			writeError(w, err)
			return
		}
		snapshots = append(snapshots, found...)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"practiceId":  practice.ID,
		"assessments": snapshots,
	})
}

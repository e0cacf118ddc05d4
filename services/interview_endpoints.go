package services

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/assessment"
	"github.com/krshsl/mulakat/backend/models"
)

type InterviewEndpoints struct {
	service *assessment.Service
	auth    *AuthService
	live    *LiveFeed
}

func NewInterviewEndpoints(service *assessment.Service, auth *AuthService, live *LiveFeed) *InterviewEndpoints {
	return &InterviewEndpoints{
		service: service,
		auth:    auth,
		live:    live,
	}
}

type QuestionRequest struct {
	Text     string   `json:"text" validate:"required"`
	MaxScore *float64 `json:"maxScore" validate:"omitempty,gt=0"`
}

type CreateInterviewRequest struct {
	Name            string            `json:"mulakatAdi" validate:"required"`
	Questions       []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
	EmotionalWeight *float64          `json:"duygusalDegerlendirme" validate:"omitempty,min=0,max=100"`
	TechnicalWeight *float64          `json:"teknikDegerlendirme" validate:"omitempty,min=0,max=100"`
}

type RegisterParticipantRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// EmotionAnalysisRequest uses the analyzer's snake_case field names.
type EmotionAnalysisRequest struct {
	StressScore   *float64 `json:"stress_score" validate:"required"`
	MatchBonus    *float64 `json:"match_bonus" validate:"required"`
	GeneralScore  *float64 `json:"general_score" validate:"required"`
	TotalAnalyses int      `json:"total_analyses"`
	MatchCount    *int     `json:"match_count" validate:"required,min=0"`
}

type KnowledgeAnalysisRequest struct {
	EvaluationText string   `json:"evaluation_text"`
	TotalScore     *float64 `json:"total_score" validate:"required"`
	ReportText     string   `json:"report_text"`
}

// SubmitResponseRequest leaves speechToText and both analyses to the
// assessment layer so that a missing one reports "missing required fields".
type SubmitResponseRequest struct {
	Email             string                    `json:"email" validate:"required"`
	QuestionID        string                    `json:"questionId"`
	QuestionNumber    int                       `json:"questionNumber"`
	QuestionText      string                    `json:"questionText"`
	SpeechToText      string                    `json:"speechToText"`
	EmotionAnalysis   *EmotionAnalysisRequest   `json:"emotionAnalysis" validate:"omitempty"`
	KnowledgeAnalysis *KnowledgeAnalysisRequest `json:"knowledgeAnalysis" validate:"omitempty"`
}

func (req SubmitResponseRequest) submission() assessment.Submission {
	sub := assessment.Submission{
		Email:          req.Email,
		QuestionID:     req.QuestionID,
		QuestionNumber: req.QuestionNumber,
		QuestionText:   req.QuestionText,
		SpeechToText:   req.SpeechToText,
	}
	if e := req.EmotionAnalysis; e != nil {
		sub.EmotionAnalysis = &models.EmotionAnalysis{
			StressScore:   *e.StressScore,
			MatchBonus:    *e.MatchBonus,
			GeneralScore:  *e.GeneralScore,
			TotalAnalyses: e.TotalAnalyses,
			MatchCount:    *e.MatchCount,
		}
	}
	if k := req.KnowledgeAnalysis; k != nil {
		sub.KnowledgeAnalysis = &models.KnowledgeAnalysis{
			EvaluationText: k.EvaluationText,
			TotalScore:     *k.TotalScore,
			ReportText:     k.ReportText,
		}
	}
	return sub
}

// CandidateView is the public shape of an interview. It carries no
// participant data.
type CandidateView struct {
	Name             string            `json:"mulakatAdi"`
	UniqueURL        string            `json:"uniqueUrl"`
	Questions        []models.Question `json:"questions"`
	Status           models.Status     `json:"status"`
	QuestionCount    int               `json:"questionCount"`
	ParticipantCount int               `json:"participantCount"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func candidateView(iv *models.Interview) CandidateView {
	return CandidateView{
		Name:             iv.Name,
		UniqueURL:        iv.UniqueURL,
		Questions:        iv.Questions,
		Status:           iv.Status,
		QuestionCount:    len(iv.Questions),
		ParticipantCount: len(iv.Participants),
		CreatedAt:        iv.CreatedAt,
	}
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		// Candidate routes, reached through the capability URL
		r.Get("/{uniqueUrl}", e.GetInterviewHandler)
		r.Post("/{uniqueUrl}/register", e.RegisterParticipantHandler)
		r.Post("/{uniqueUrl}/responses", e.SubmitResponseHandler)
		r.Get("/{uniqueUrl}/results/{email}", e.ParticipantResultHandler)

		// Company routes
		r.Group(func(r chi.Router) {
			r.Use(e.auth.Middleware)
			r.Use(RequireKind(KindCompany))
			r.Post("/", e.CreateInterviewHandler)
			r.Get("/", e.ListInterviewsHandler)
			r.Get("/{uniqueUrl}/all-results", e.AllResultsHandler)
			r.Get("/{uniqueUrl}/all-results.xlsx", e.ExportResultsHandler)
			r.Post("/{uniqueUrl}/archive", e.ArchiveHandler)
			r.Get("/{uniqueUrl}/live", e.LiveHandler)
		})
	})
}

func (e *InterviewEndpoints) CreateInterviewHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req CreateInterviewRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := assessment.CreateInterviewInput{
		Name:            req.Name,
		EmotionalWeight: req.EmotionalWeight,
		TechnicalWeight: req.TechnicalWeight,
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, assessment.QuestionInput{Text: q.Text, MaxScore: q.MaxScore})
	}

	interview, err := e.service.CreateInterview(r.Context(), identity.ID, in)
	if err != nil {
		slog.Error("Failed to create interview", "error", err, "company_id", identity.ID)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Interview created",
		"interview":    interview,
		"interviewUrl": "/interview/" + interview.UniqueURL,
	})
}

func (e *InterviewEndpoints) ListInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	page := pageFromQuery(r)

	interviews, total, err := e.service.ListInterviews(r.Context(), identity.ID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interviews": interviews,
		"total":      total,
		"hasMore":    hasMore(page, len(interviews), total),
	})
}

func (e *InterviewEndpoints) GetInterviewHandler(w http.ResponseWriter, r *http.Request) {
	interview, err := e.service.GetInterview(r.Context(), chi.URLParam(r, "uniqueUrl"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateView(interview))
}

func (e *InterviewEndpoints) RegisterParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterParticipantRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	participant, err := e.service.RegisterParticipant(r.Context(), chi.URLParam(r, "uniqueUrl"), assessment.ParticipantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Registration successful",
		"participantId": participant.ID,
	})
}

func (e *InterviewEndpoints) SubmitResponseHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := e.service.SubmitResponse(r.Context(), chi.URLParam(r, "uniqueUrl"), req.submission())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Response recorded",
		"response":      result.Response,
		"isComplete":    result.IsComplete,
		"overallScores": result.OverallScores,
	})
}

func (e *InterviewEndpoints) ParticipantResultHandler(w http.ResponseWriter, r *http.Request) {
	// Clients build this path with encodeURIComponent
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, apperr.Validation("invalid email"))
		return
	}

	participant, err := e.service.ParticipantResult(r.Context(), chi.URLParam(r, "uniqueUrl"), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"participant": map[string]interface{}{
			"firstName":     participant.FirstName,
			"lastName":      participant.LastName,
			"email":         participant.Email,
			"registeredAt":  participant.RegisteredAt,
			"completedAt":   participant.CompletedAt,
			"overallScores": participant.OverallScores,
		},
		"responses": participant.Responses,
	})
}

func (e *InterviewEndpoints) AllResultsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	report, err := e.service.InterviewResults(r.Context(), chi.URLParam(r, "uniqueUrl"), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (e *InterviewEndpoints) ExportResultsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	uniqueURL := chi.URLParam(r, "uniqueUrl")

	report, err := e.service.InterviewResults(r.Context(), uniqueURL, identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="results.xlsx"`)
	if err := WriteResultsWorkbook(w, report); err != nil {
		slog.Error("Failed to export results", "error", err, "interview_url", uniqueURL)
		return
	}
	slog.Info("Results exported", "interview_url", uniqueURL, "participant_count", report.ParticipantCount)
}

func (e *InterviewEndpoints) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	interview, err := e.service.ArchiveInterview(r.Context(), chi.URLParam(r, "uniqueUrl"), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Interview archived",
		"interview": interview,
	})
}

func (e *InterviewEndpoints) LiveHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	uniqueURL := chi.URLParam(r, "uniqueUrl")

	if _, err := e.service.OwnedInterview(r.Context(), uniqueURL, identity.ID); err != nil {
		writeError(w, err)
		return
	}
	e.live.Serve(w, r, uniqueURL, identity.ID)
}

package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/repository"
)

const testOrigin = "http://localhost:5173"

func newTestServer(t *testing.T) (*Server, *chi.Mux) {
	t.Helper()

	config := &Config{
		JWT:       JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		Store:     StoreConfig{UpdateTimeout: time.Second, MaxRetries: 5},
		WebSocket: WebSocketConfig{AllowedOrigins: testOrigin},
		Archive:   ArchiveConfig{Dir: t.TempDir()},
	}
	store := repository.NewMemoryStore()

	s := NewServer(config)
	s.SetStores(store, store, nil)
	require.NoError(t, s.InitializeServices())
	t.Cleanup(s.wsHub.Stop)

	return s, s.SetupRoutes()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func companyToken(t *testing.T, h http.Handler, email, taxNumber string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/company/register", "", map[string]string{
		"name":      "Acme",
		"taxNumber": taxNumber,
		"email":     email,
		"phone":     "555",
		"address":   "Ankara",
		"password":  "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/company/login", "", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

func userToken(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "ada",
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

func createInterview(t *testing.T, h http.Handler, token string, questions int) string {
	t.Helper()

	qs := make([]map[string]string, 0, questions)
	for i := 0; i < questions; i++ {
		qs = append(qs, map[string]string{"text": fmt.Sprintf("Question %d", i+1)})
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/interviews", token, map[string]interface{}{
		"mulakatAdi": "Go Developer",
		"questions":  qs,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	interview := decodeBody(t, rec)["interview"].(map[string]interface{})
	return interview["uniqueUrl"].(string)
}

func answer(email string, n int, emotion, knowledge float64) map[string]interface{} {
	return map[string]interface{}{
		"email":          email,
		"questionNumber": n,
		"questionText":   fmt.Sprintf("Question %d", n),
		"speechToText":   "my answer",
		"emotionAnalysis": map[string]interface{}{
			"stress_score":  0,
			"match_bonus":   0,
			"general_score": emotion,
			"match_count":   0,
		},
		"knowledgeAnalysis": map[string]interface{}{
			"evaluation_text": "fine",
			"total_score":     knowledge,
		},
	}
}

// completedInterview creates a two question interview with one finished
// participant and returns its capability URL.
func completedInterview(t *testing.T, h http.Handler, token string) string {
	t.Helper()

	url := createInterview(t, h, token, 2)
	base := "/api/v1/interviews/" + url

	rec := doJSON(t, h, http.MethodPost, base+"/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for n := 1; n <= 2; n++ {
		rec = doJSON(t, h, http.MethodPost, base+"/responses", "", answer("ada@example.com", n, 80, 60))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return url
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := doJSON(t, h, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","database":"memory"}`, rec.Body.String())
	}
}

func TestInitializeServices_RequiresSecret(t *testing.T) {
	store := repository.NewMemoryStore()
	s := NewServer(&Config{})
	s.SetStores(store, store, nil)
	assert.Error(t, s.InitializeServices())

	assert.Error(t, NewServer(&Config{JWT: JWTConfig{Secret: "x"}}).InitializeServices())
}

func TestAuth_CompanyFlow(t *testing.T) {
	_, h := newTestServer(t)
	token := companyToken(t, h, "hr@acme.com", "1234567890")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	identity := decodeBody(t, rec)["identity"].(map[string]interface{})
	assert.Equal(t, KindCompany, identity["kind"])
	assert.Equal(t, "hr@acme.com", identity["email"])
	account := decodeBody(t, rec)["account"].(map[string]interface{})
	assert.Equal(t, "Acme", account["name"])
	assert.Equal(t, "1234567890", account["taxNumber"])
	assert.NotContains(t, account, "password")

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/company/login", "", map[string]string{
		"email":    "hr@acme.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/company/register", "", map[string]string{
		"name":      "Acme Again",
		"taxNumber": "1234567890",
		"email":     "other@acme.com",
		"phone":     "555",
		"address":   "Ankara",
		"password":  "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuth_MeRejectsVanishedAccount(t *testing.T) {
	s, h := newTestServer(t)
	user := userToken(t, h, "ada@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/auth/me", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", decodeBody(t, rec)["account"].(map[string]interface{})["username"])

	// A validly signed token for an account the store has never seen
	ghost, err := s.authService.generateToken(KindUser, "00000000-0000-0000-0000-000000000000", "ghost@example.com")
	require.NoError(t, err)
	rec = doJSON(t, h, http.MethodGet, "/api/v1/auth/me", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Validation(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "ada",
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, apperr.CodeValidation, body["code"])
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "email", fields["Email"])
	assert.Equal(t, "min", fields["Password"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_RejectsMissingAndWrongKindTokens(t *testing.T) {
	_, h := newTestServer(t)
	user := userToken(t, h, "ada@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/interviews", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews", user, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	company := companyToken(t, h, "hr@acme.com", "1234567890")
	rec = doJSON(t, h, http.MethodGet, "/api/v1/practices", company, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Query tokens are only honoured on websocket handshakes
	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews?token="+company, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInterviewFlow(t *testing.T) {
	_, h := newTestServer(t)
	token := companyToken(t, h, "hr@acme.com", "1234567890")
	url := createInterview(t, h, token, 2)
	base := "/api/v1/interviews/" + url

	rec := doJSON(t, h, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody(t, rec)
	assert.Equal(t, "Go Developer", view["mulakatAdi"])
	assert.Equal(t, float64(2), view["questionCount"])
	assert.NotContains(t, view, "participants")

	rec = doJSON(t, h, http.MethodPost, base+"/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, base+"/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, base+"/responses", "", answer("ada@example.com", 1, 80, 60))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, false, decodeBody(t, rec)["isComplete"])

	rec = doJSON(t, h, http.MethodPost, base+"/responses", "", answer("ada@example.com", 1, 80, 60))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a question is answered once")

	rec = doJSON(t, h, http.MethodPost, base+"/responses", "", answer("ada@example.com", 2, 80, 60))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["isComplete"])
	scores := body["overallScores"].(map[string]interface{})
	assert.InDelta(t, 66, scores["finalScore"], 1e-9)

	rec = doJSON(t, h, http.MethodGet, base+"/results/ada@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody(t, rec)
	assert.Len(t, result["responses"], 2)

	rec = doJSON(t, h, http.MethodGet, base+"/results/nobody@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitResponse_MissingAnalysis(t *testing.T) {
	tests := []struct {
		name  string
		strip func(sub map[string]interface{})
	}{
		{
			name:  "knowledge analysis",
			strip: func(sub map[string]interface{}) { delete(sub, "knowledgeAnalysis") },
		},
		{
			name:  "emotion analysis",
			strip: func(sub map[string]interface{}) { delete(sub, "emotionAnalysis") },
		},
		{
			name: "match count",
			strip: func(sub map[string]interface{}) {
				delete(sub["emotionAnalysis"].(map[string]interface{}), "match_count")
			},
		},
		{
			name: "knowledge total score",
			strip: func(sub map[string]interface{}) {
				delete(sub["knowledgeAnalysis"].(map[string]interface{}), "total_score")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t)
			token := companyToken(t, h, "hr@acme.com", "1234567890")
			base := "/api/v1/interviews/" + createInterview(t, h, token, 1)

			rec := doJSON(t, h, http.MethodPost, base+"/register", "", map[string]string{
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"email":     "ada@example.com",
			})
			require.Equal(t, http.StatusCreated, rec.Code)

			sub := answer("ada@example.com", 1, 80, 60)
			tt.strip(sub)
			rec = doJSON(t, h, http.MethodPost, base+"/responses", "", sub)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			rec = doJSON(t, h, http.MethodGet, base+"/results/ada@example.com", "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, decodeBody(t, rec)["responses"])
		})
	}
}

func TestParticipantResult_EncodedEmail(t *testing.T) {
	_, h := newTestServer(t)
	token := companyToken(t, h, "hr@acme.com", "1234567890")
	base := "/api/v1/interviews/" + createInterview(t, h, token, 1)

	rec := doJSON(t, h, http.MethodPost, base+"/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada+x@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, segment := range []string{"ada+x@example.com", "ada%2Bx%40example.com", "ada+x%40example.com"} {
		rec = doJSON(t, h, http.MethodGet, base+"/results/"+segment, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, segment)
		participant := decodeBody(t, rec)["participant"].(map[string]interface{})
		assert.Equal(t, "ada+x@example.com", participant["email"], segment)
	}
}

func TestInterviewResults_OwnerOnly(t *testing.T) {
	_, h := newTestServer(t)
	owner := companyToken(t, h, "hr@acme.com", "1234567890")
	other := companyToken(t, h, "hr@globex.com", "0987654321")
	url := completedInterview(t, h, owner)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/interviews/"+url+"/all-results", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody(t, rec)
	assert.Equal(t, "Go Developer", report["mulakatAdi"])
	assert.Equal(t, float64(1), report["participantCount"])
	results := report["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "completed", results[0].(map[string]interface{})["status"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews/"+url+"/all-results", other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	assert.Equal(t, float64(1), list["total"])
	assert.Equal(t, false, list["hasMore"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total"])
}

func TestExportResults(t *testing.T) {
	_, h := newTestServer(t)
	token := companyToken(t, h, "hr@acme.com", "1234567890")
	url := completedInterview(t, h, token)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/interviews/"+url+"/all-results.xlsx", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet}, f.GetSheetList())

	header, err := f.GetCellValue(resultsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "First Name", header)

	email, err := f.GetCellValue(resultsSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	final, err := f.GetCellValue(resultsSheet, "J2")
	require.NoError(t, err)
	assert.Equal(t, "66", final)
}

func TestArchiveInterview(t *testing.T) {
	_, h := newTestServer(t)
	owner := companyToken(t, h, "hr@acme.com", "1234567890")
	other := companyToken(t, h, "hr@globex.com", "0987654321")
	url := createInterview(t, h, owner, 1)
	base := "/api/v1/interviews/" + url

	rec := doJSON(t, h, http.MethodPost, base+"/archive", other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, base+"/archive", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	interview := decodeBody(t, rec)["interview"].(map[string]interface{})
	assert.Equal(t, "archived", interview["status"])

	rec = doJSON(t, h, http.MethodPost, base+"/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveFeed(t *testing.T) {
	_, h := newTestServer(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	token := companyToken(t, h, "hr@acme.com", "1234567890")
	url := createInterview(t, h, token, 1)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/interviews/" + url + "/live?token=" + token

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{testOrigin}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Registration with the hub finishes after the handshake returns
	time.Sleep(100 * time.Millisecond)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/interviews/"+url+"/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "participant_registered", event["type"])
	assert.Equal(t, "ada@example.com", event["email"])
}

func TestPracticeFlow(t *testing.T) {
	s, h := newTestServer(t)
	token := userToken(t, h, "ada@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/practices", token, map[string]interface{}{
		"pratikAdi": "Morning drill",
		"questions": []map[string]string{{"text": "What is a slice?"}, {"text": "What is a map?"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	practiceID := decodeBody(t, rec)["practice"].(map[string]interface{})["id"].(string)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/latest-practice/questions/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, practiceID, body["practiceId"])
	assert.Equal(t, float64(2), body["totalQuestions"])
	assert.Equal(t, "What is a slice?", body["question"].(map[string]interface{})["text"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/latest-practice/questions/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/v1/latest-practice/questions/3", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/latest-practice/emotion-data/1", token, map[string]interface{}{
		"faceEmotions":    []string{"neutral"},
		"speechText":      "a slice is a view",
		"analysisResults": map[string]float64{"stress_score": 10, "match_bonus": 5, "general_score": 70},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 70, decodeBody(t, rec)["duyguAnaliz"], 1e-9)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/latest-practice/assessment/1", token, map[string]interface{}{
		"assessmentReport": "good",
		"totalScore":       80,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "active", data["status"])
	assert.InDelta(t, 80, data["practiceBilgiAnaliz"], 1e-9)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/latest-practice/assessment/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good", decodeBody(t, rec)["assessmentReport"])

	rec = doJSON(t, h, http.MethodPost, "/api/v1/latest-practice/assessment/2", token, map[string]interface{}{
		"assessmentReport": "ok",
		"totalScore":       60,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.InDelta(t, 70, data["practiceBilgiAnaliz"], 1e-9)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/latest-practice/assessment/2", token, map[string]interface{}{
		"assessmentReport": "too much",
		"totalScore":       140,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/practices/"+practiceID+"/assessments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["assessments"], 2)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/practices", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	assert.Equal(t, float64(1), list["total"])
	assert.InDelta(t, 70, list["bilgiAnaliz"], 1e-9)

	other := userToken(t, h, "grace@example.com")
	rec = doJSON(t, h, http.MethodGet, "/api/v1/practices/"+practiceID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	snapshots, err := NewAssessmentArchive(s.config.Archive.Dir).List(practiceID)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 1, snapshots[0].QuestionNumber)
	assert.Equal(t, 2, snapshots[1].QuestionNumber)
}

func TestSeedDatabase(t *testing.T) {
	s, h := newTestServer(t)
	ctx := t.Context()

	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/company/login", "", map[string]string{
		"email":    demoCompanyEmail,
		"password": demoPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"].(string)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/interviews", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["total"])

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    demoUserEmail,
		"password": demoPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

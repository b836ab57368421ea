package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type fakeScreening struct {
	screenErr  error
	moduleErr  error
	lastJob    models.JobDescription
	lastDocs   []models.ResumeDocument
	lastN      int
	lastText   string
	lastJobDoc string
}

func (f *fakeScreening) ScreenResume(_ context.Context, job models.JobDescription, doc models.ResumeDocument) (*models.ScoreResult, error) {
	f.lastJob = job
	f.lastDocs = []models.ResumeDocument{doc}
	if f.screenErr != nil {
		return nil, f.screenErr
	}
	return &models.ScoreResult{Name: "Jane Doe", FitScore: 8.1, RedFlags: []string{}}, nil
}

func (f *fakeScreening) ScreenBatch(_ context.Context, job models.JobDescription, docs []models.ResumeDocument) []models.BatchItem {
	f.lastJob = job
	f.lastDocs = docs
	items := make([]models.BatchItem, 0, len(docs))
	for _, doc := range docs {
		if strings.HasPrefix(string(doc.Content), "%PDF-broken") {
			items = append(items, models.BatchItem{
				Filename:  doc.Filename,
				Error:     "unreadable document",
				ErrorKind: models.ErrorKindExtraction,
			})
			continue
		}
		items = append(items, models.BatchItem{
			Filename: doc.Filename,
			Score:    &models.ScoreResult{Name: doc.Filename, FitScore: 7},
		})
	}
	return items
}

func (f *fakeScreening) Recommend(_ context.Context, scores []models.ScoreResult, n int) (*models.RecommendationList, error) {
	f.lastN = n
	if f.moduleErr != nil {
		return nil, f.moduleErr
	}
	return &models.RecommendationList{Recommendations: []models.Recommendation{
		{Name: scores[0].Name, Score: scores[0].FitScore, Reason: "Strongest match."},
	}}, nil
}

func (f *fakeScreening) DetectRedFlags(_ context.Context, resumeText string) (*models.RedFlagReport, error) {
	f.lastText = resumeText
	if f.moduleErr != nil {
		return nil, f.moduleErr
	}
	return &models.RedFlagReport{Found: true, Summary: "Two short tenures."}, nil
}

func (f *fakeScreening) EstimateSalary(_ context.Context, jobDescription, resumeText string) (*models.SalaryEstimate, error) {
	f.lastJobDoc, f.lastText = jobDescription, resumeText
	if f.moduleErr != nil {
		return nil, f.moduleErr
	}
	return &models.SalaryEstimate{Range: "$90k - $110k", Summary: "Senior level."}, nil
}

func (f *fakeScreening) CheckConsistency(_ context.Context, resumeText string) (*models.ConsistencyReport, error) {
	f.lastText = resumeText
	if f.moduleErr != nil {
		return nil, f.moduleErr
	}
	return &models.ConsistencyReport{Found: false, Summary: "Dates line up."}, nil
}

func (f *fakeScreening) CalculateFit(_ context.Context, jobDescription, resumeText string) (*models.FitReport, error) {
	f.lastJobDoc, f.lastText = jobDescription, resumeText
	if f.moduleErr != nil {
		return nil, f.moduleErr
	}
	return &models.FitReport{RoleFitScore: 8, CultureFitScore: 7, Summary: "Good fit."}, nil
}

func newTestApp(screening services.ScreeningService) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app,
		NewScreenHandler(screening, 1024, 2),
		NewAnalysisHandler(screening),
	)
	return app
}

type upload struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target), string(raw))
}

var jobFields = map[string]string{
	"job_title":       "Backend Engineer",
	"job_description": "Build Go services.",
	"required_skills": "Go, PostgreSQL, go",
	"strictness":      "High",
}

func TestPing(t *testing.T) {
	app := newTestApp(&fakeScreening{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "pong", string(body))
}

func TestScreenParsesJobFields(t *testing.T) {
	fake := &fakeScreening{}
	app := newTestApp(fake)

	resp, err := app.Test(multipartRequest(t, "/api/v1/screen", jobFields, upload{"resume", "jane.txt", "Jane Doe"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var score models.ScoreResult
	decode(t, resp, &score)
	require.Equal(t, "Jane Doe", score.Name)

	require.Equal(t, "Backend Engineer", fake.lastJob.Title)
	require.Equal(t, []string{"Go", "PostgreSQL"}, fake.lastJob.RequiredSkills)
	require.Equal(t, models.StrictnessHigh, fake.lastJob.Strictness)
	require.Equal(t, "jane.txt", fake.lastDocs[0].Filename)
	require.Equal(t, "Jane Doe", string(fake.lastDocs[0].Content))
}

func TestScreenValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  []upload
		want   string
	}{
		{
			name:   "missing job description",
			fields: map[string]string{"job_title": "Engineer"},
			files:  []upload{{"resume", "a.txt", "text"}},
			want:   "job_description is required",
		},
		{
			name:   "bad strictness",
			fields: map[string]string{"job_description": "Go", "strictness": "extreme"},
			files:  []upload{{"resume", "a.txt", "text"}},
			want:   "invalid strictness",
		},
		{
			name:   "missing resume",
			fields: map[string]string{"job_description": "Go"},
			want:   "resume file is required",
		},
		{
			name:   "file too large",
			fields: map[string]string{"job_description": "Go"},
			files:  []upload{{"resume", "big.txt", strings.Repeat("x", 2048)}},
			want:   "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeScreening{})
			resp, err := app.Test(multipartRequest(t, "/api/v1/screen", tt.fields, tt.files...), -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			decode(t, resp, &body)
			require.Equal(t, models.ErrorKindInvalid, body.ErrorKind)
			require.Contains(t, body.Error+strings.Join(body.Details, ";"), tt.want)
		})
	}
}

func TestScreenErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind models.ErrorKind
	}{
		{"unreadable", errors.Wrap(services.ErrUnreadableDocument, "a.pdf"), fiber.StatusUnprocessableEntity, models.ErrorKindExtraction},
		{"malformed reply", &services.ParseError{Operation: "screen", Field: "name", Reason: "is missing"}, fiber.StatusBadGateway, models.ErrorKindParse},
		{"auth", fmt.Errorf("%w: screen", services.ErrProviderAuth), fiber.StatusBadGateway, models.ErrorKindProvider},
		{"provider down", fmt.Errorf("%w: screen: timeout", services.ErrProvider), fiber.StatusServiceUnavailable, models.ErrorKindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeScreening{screenErr: tt.err})
			resp, err := app.Test(multipartRequest(t, "/api/v1/screen", jobFields, upload{"resume", "a.pdf", "%PDF-"}), -1)
			require.NoError(t, err)
			require.Equal(t, tt.code, resp.StatusCode)

			var body models.ErrorResponse
			decode(t, resp, &body)
			require.Equal(t, tt.kind, body.ErrorKind)
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestBatchScreenReportsItemErrorsWithOK(t *testing.T) {
	fake := &fakeScreening{}
	app := newTestApp(fake)

	req := multipartRequest(t, "/api/v1/batch_screen", jobFields,
		upload{"resumes[]", "good.txt", "Jane"},
		upload{"resumes[]", "broken.pdf", "%PDF-broken"},
	)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []models.BatchItem
	decode(t, resp, &items)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Score)
	require.Equal(t, models.ErrorKindExtraction, items[1].ErrorKind)
	require.Len(t, fake.lastDocs, 2)
}

func TestBatchScreenIsolatesOversizedFile(t *testing.T) {
	fake := &fakeScreening{}
	app := newTestApp(fake)

	req := multipartRequest(t, "/api/v1/batch_screen", jobFields,
		upload{"resumes[]", "ok.txt", "Jane"},
		upload{"resumes[]", "big.txt", strings.Repeat("x", 2048)},
	)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []models.BatchItem
	decode(t, resp, &items)
	require.Len(t, items, 2)
	require.Equal(t, "ok.txt", items[0].Filename)
	require.NotNil(t, items[0].Score)
	require.Equal(t, "big.txt", items[1].Filename)
	require.Equal(t, models.ErrorKindInvalid, items[1].ErrorKind)
	require.Contains(t, items[1].Error, "too large")

	require.Len(t, fake.lastDocs, 1, "only the valid file is screened")
	require.Equal(t, "ok.txt", fake.lastDocs[0].Filename)
}

func TestBatchScreenLimits(t *testing.T) {
	app := newTestApp(&fakeScreening{})

	resp, err := app.Test(multipartRequest(t, "/api/v1/batch_screen", jobFields), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := multipartRequest(t, "/api/v1/batch_screen", jobFields,
		upload{"resumes", "a.txt", "a"},
		upload{"resumes", "b.txt", "b"},
		upload{"resumes", "c.txt", "c"},
	)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decode(t, resp, &body)
	require.Contains(t, body.Error, "Too many files")
}

func TestRecommend(t *testing.T) {
	fake := &fakeScreening{}
	app := newTestApp(fake)

	resp, err := app.Test(jsonRequest(t, "/api/v1/recommend", models.RecommendRequest{
		CandidateScores:    []models.ScoreResult{{Name: "Jane", FitScore: 8}},
		NumRecommendations: 3,
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list models.RecommendationList
	decode(t, resp, &list)
	require.Len(t, list.Recommendations, 1)
	require.Equal(t, 3, fake.lastN)

	resp, err = app.Test(jsonRequest(t, "/api/v1/recommend", map[string]interface{}{
		"candidate_scores": []interface{}{},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decode(t, resp, &body)
	require.Contains(t, body.Details, "num_recommendations is required")
}

func TestModuleEndpoints(t *testing.T) {
	fake := &fakeScreening{}
	app := newTestApp(fake)

	resp, err := app.Test(jsonRequest(t, "/api/v1/module/red_flags", map[string]string{"resume_text": "resume"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var flags models.RedFlagReport
	decode(t, resp, &flags)
	require.True(t, flags.Found)
	require.Equal(t, "resume", fake.lastText)

	resp, err = app.Test(jsonRequest(t, "/api/v1/module/salary_estimation", map[string]string{
		"job_description": "Go dev", "resume_text": "resume",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var salary models.SalaryEstimate
	decode(t, resp, &salary)
	require.Equal(t, "$90k - $110k", salary.Range)
	require.Equal(t, "Go dev", fake.lastJobDoc)

	resp, err = app.Test(jsonRequest(t, "/api/v1/module/background_consistency", map[string]string{"resume_text": "r"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "/api/v1/module/candidate_fit", map[string]string{
		"job_description": "Go dev", "resume_text": "resume",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var fit models.FitReport
	decode(t, resp, &fit)
	require.Equal(t, 8, fit.RoleFitScore)
}

func TestModuleEndpointValidationAndErrors(t *testing.T) {
	app := newTestApp(&fakeScreening{})
	resp, err := app.Test(jsonRequest(t, "/api/v1/module/candidate_fit", map[string]string{"resume_text": "r"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decode(t, resp, &body)
	require.Equal(t, []string{"job_description is required"}, body.Details)

	app = newTestApp(&fakeScreening{moduleErr: &services.ParseError{Operation: "red_flags", Field: "summary", Reason: "is missing"}})
	resp, err = app.Test(jsonRequest(t, "/api/v1/module/red_flags", map[string]string{"resume_text": "r"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

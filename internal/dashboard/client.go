package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/models"
)

// APIClient is the dashboard's view of the screening API.
type APIClient interface {
	BatchScreen(job models.JobDescription, docs []models.ResumeDocument) ([]models.BatchItem, error)
	Recommend(scores []models.ScoreResult, n int) (*models.RecommendationList, error)
	RedFlags(resumeText string) (*models.RedFlagReport, error)
	SalaryEstimation(jobDescription, resumeText string) (*models.SalaryEstimate, error)
	BackgroundConsistency(resumeText string) (*models.ConsistencyReport, error)
	CandidateFit(jobDescription, resumeText string) (*models.FitReport, error)
}

// APIError is a non-2xx reply from the screening API.
type APIError struct {
	Status  int
	Kind    models.ErrorKind
	Message string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

type apiClient struct {
	baseURL string
	timeout time.Duration
}

func NewAPIClient(baseURL string, timeout time.Duration) APIClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (a *apiClient) BatchScreen(job models.JobDescription, docs []models.ResumeDocument) ([]models.BatchItem, error) {
	agent := fiber.Post(a.baseURL + "/api/v1/batch_screen").Timeout(a.timeout)

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("job_title", job.Title)
	args.Set("job_description", job.Description)
	args.Set("required_skills", strings.Join(job.RequiredSkills, ", "))
	args.Set("strictness", string(job.Strictness))
	args.Set("positive_factors", job.PositiveFactors)
	args.Set("negative_factors", job.NegativeFactors)

	for _, doc := range docs {
		agent.FileData(&fiber.FormFile{
			Fieldname: "resumes[]",
			Name:      doc.Filename,
			Content:   doc.Content,
		})
	}
	agent.MultipartForm(args)

	var items []models.BatchItem
	if err := a.do(agent, "batch_screen", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *apiClient) Recommend(scores []models.ScoreResult, n int) (*models.RecommendationList, error) {
	var list models.RecommendationList
	err := a.postJSON("/api/v1/recommend", models.RecommendRequest{CandidateScores: scores, NumRecommendations: n}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (a *apiClient) RedFlags(resumeText string) (*models.RedFlagReport, error) {
	var report models.RedFlagReport
	if err := a.postJSON("/api/v1/module/red_flags", models.ResumeTextRequest{ResumeText: resumeText}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (a *apiClient) SalaryEstimation(jobDescription, resumeText string) (*models.SalaryEstimate, error) {
	var estimate models.SalaryEstimate
	req := models.JobResumeRequest{JobDescription: jobDescription, ResumeText: resumeText}
	if err := a.postJSON("/api/v1/module/salary_estimation", req, &estimate); err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (a *apiClient) BackgroundConsistency(resumeText string) (*models.ConsistencyReport, error) {
	var report models.ConsistencyReport
	if err := a.postJSON("/api/v1/module/background_consistency", models.ResumeTextRequest{ResumeText: resumeText}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (a *apiClient) CandidateFit(jobDescription, resumeText string) (*models.FitReport, error) {
	var report models.FitReport
	req := models.JobResumeRequest{JobDescription: jobDescription, ResumeText: resumeText}
	if err := a.postJSON("/api/v1/module/candidate_fit", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (a *apiClient) postJSON(path string, payload, target interface{}) error {
	agent := fiber.Post(a.baseURL + path).Timeout(a.timeout).JSON(payload)
	return a.do(agent, path, target)
}

// do sends the request and decodes a 2xx body into target.
func (a *apiClient) do(agent *fiber.Agent, operation string, target interface{}) error {
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "failed to call API %s", operation)
	}

	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		apiErr := &APIError{Status: status, Message: strings.TrimSpace(string(body))}
		var reply models.ErrorResponse
		if err := json.Unmarshal(body, &reply); err == nil && reply.Error != "" {
			apiErr.Message = reply.Error
			apiErr.Kind = reply.ErrorKind
			if len(reply.Details) > 0 {
				apiErr.Message += ": " + strings.Join(reply.Details, "; ")
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.Wrapf(err, "failed to decode API %s response", operation)
	}
	return nil
}

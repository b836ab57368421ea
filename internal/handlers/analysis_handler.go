package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type AnalysisHandler struct {
	screening services.ScreeningService
	validate  *validator.Validate
}

func NewAnalysisHandler(screening services.ScreeningService) *AnalysisHandler {
	return &AnalysisHandler{
		screening: screening,
		validate:  newValidator(),
	}
}

// HandleRecommend handles POST /recommend
func (h *AnalysisHandler) HandleRecommend(c *fiber.Ctx) error {
	var req models.RecommendRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	list, err := h.screening.Recommend(c.UserContext(), req.CandidateScores, req.NumRecommendations)
	if err != nil {
		return respondError(c, "recommend", err)
	}
	return c.JSON(list)
}

// HandleRedFlags handles POST /module/red_flags
func (h *AnalysisHandler) HandleRedFlags(c *fiber.Ctx) error {
	var req models.ResumeTextRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	report, err := h.screening.DetectRedFlags(c.UserContext(), req.ResumeText)
	if err != nil {
		return respondError(c, "red_flags", err)
	}
	return c.JSON(report)
}

// HandleSalaryEstimation handles POST /module/salary_estimation
func (h *AnalysisHandler) HandleSalaryEstimation(c *fiber.Ctx) error {
	var req models.JobResumeRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	estimate, err := h.screening.EstimateSalary(c.UserContext(), req.JobDescription, req.ResumeText)
	if err != nil {
		return respondError(c, "salary_estimation", err)
	}
	return c.JSON(estimate)
}

// HandleBackgroundConsistency handles POST /module/background_consistency
func (h *AnalysisHandler) HandleBackgroundConsistency(c *fiber.Ctx) error {
	var req models.ResumeTextRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	report, err := h.screening.CheckConsistency(c.UserContext(), req.ResumeText)
	if err != nil {
		return respondError(c, "background_consistency", err)
	}
	return c.JSON(report)
}

// HandleCandidateFit handles POST /module/candidate_fit
func (h *AnalysisHandler) HandleCandidateFit(c *fiber.Ctx) error {
	var req models.JobResumeRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	report, err := h.screening.CalculateFit(c.UserContext(), req.JobDescription, req.ResumeText)
	if err != nil {
		return respondError(c, "candidate_fit", err)
	}
	return c.JSON(report)
}

// bind parses and validates a JSON body.
func (h *AnalysisHandler) bind(c *fiber.Ctx, req interface{}) *models.ErrorResponse {
	if err := c.BodyParser(req); err != nil {
		return &models.ErrorResponse{Error: "Invalid request payload", ErrorKind: models.ErrorKindInvalid}
	}
	if err := h.validate.Struct(req); err != nil {
		return &models.ErrorResponse{
			Error:     "Invalid request payload",
			ErrorKind: models.ErrorKindInvalid,
			Details:   validationDetails(err),
		}
	}
	return nil
}

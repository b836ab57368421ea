package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScreenHandler struct {
	screening   services.ScreeningService
	validate    *validator.Validate
	maxFileSize int64
	maxFiles    int
}

func NewScreenHandler(screening services.ScreeningService, maxFileSize int64, maxFiles int) *ScreenHandler {
	return &ScreenHandler{
		screening:   screening,
		validate:    newValidator(),
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
	}
}

// HandleScreen handles POST /screen
func (h *ScreenHandler) HandleScreen(c *fiber.Ctx) error {
	job, problem := h.parseJob(c)
	if problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		return badRequest(c, "resume file is required")
	}

	doc, err := readUpload(fh, h.maxFileSize)
	if err != nil {
		return badRequest(c, err.Error())
	}

	score, err := h.screening.ScreenResume(c.UserContext(), job, doc)
	if err != nil {
		return respondError(c, "screen", err)
	}
	return c.JSON(score)
}

// HandleBatchScreen handles POST /batch_screen. Per-document failures are
// reported in the items and do not change the status code.
func (h *ScreenHandler) HandleBatchScreen(c *fiber.Ctx) error {
	job, problem := h.parseJob(c)
	if problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "failed to parse multipart form")
	}

	files := batchFiles(form)
	if len(files) == 0 {
		return badRequest(c, "No resumes uploaded. Please upload one or more files as 'resumes[]'.")
	}
	if len(files) > h.maxFiles {
		return badRequest(c, fmt.Sprintf("Too many files. Max files per batch: %d", h.maxFiles))
	}

	var intake models.BatchIntake
	for _, fh := range files {
		doc, err := readUpload(fh, h.maxFileSize)
		if err != nil {
			intake.Reject(fh.Filename, err)
			continue
		}
		intake.Accept(doc)
	}

	var screened []models.BatchItem
	if docs := intake.Documents(); len(docs) > 0 {
		screened = h.screening.ScreenBatch(c.UserContext(), job, docs)
	}
	return c.JSON(intake.Merge(screened))
}

func (h *ScreenHandler) parseJob(c *fiber.Ctx) (models.JobDescription, *models.ErrorResponse) {
	job, err := jobFromForm(c)
	if err != nil {
		return job, &models.ErrorResponse{Error: err.Error(), ErrorKind: models.ErrorKindInvalid}
	}
	if err := h.validate.Struct(job); err != nil {
		return job, &models.ErrorResponse{
			Error:     "Invalid job description",
			ErrorKind: models.ErrorKindInvalid,
			Details:   validationDetails(err),
		}
	}
	return job, nil
}

func batchFiles(form *multipart.Form) []*multipart.FileHeader {
	if files := form.File["resumes[]"]; len(files) > 0 {
		return files
	}
	return form.File["resumes"]
}

package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// jobFromForm reads the job fields shared by the screening endpoints.
func jobFromForm(c *fiber.Ctx) (models.JobDescription, error) {
	strictness, err := models.ParseStrictness(c.FormValue("strictness"))
	if err != nil {
		return models.JobDescription{}, err
	}

	return models.JobDescription{
		Title:           strings.TrimSpace(c.FormValue("job_title")),
		Description:     strings.TrimSpace(c.FormValue("job_description")),
		RequiredSkills:  models.ParseSkills(c.FormValue("required_skills")),
		Strictness:      strictness,
		PositiveFactors: strings.TrimSpace(c.FormValue("positive_factors")),
		NegativeFactors: strings.TrimSpace(c.FormValue("negative_factors")),
	}, nil
}

func readUpload(fh *multipart.FileHeader, maxFileSize int64) (models.ResumeDocument, error) {
	if fh.Size > maxFileSize {
		return models.ResumeDocument{}, errors.Errorf("%s is too large. Max size: %d bytes", fh.Filename, maxFileSize)
	}

	file, err := fh.Open()
	if err != nil {
		return models.ResumeDocument{}, errors.Wrapf(err, "failed to open %s", fh.Filename)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.ResumeDocument{}, errors.Wrapf(err, "failed to read %s", fh.Filename)
	}

	return models.ResumeDocument{Filename: fh.Filename, Content: content}, nil
}

func badRequest(c *fiber.Ctx, message string, details ...string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:     message,
		ErrorKind: models.ErrorKindInvalid,
		Details:   details,
	})
}

// validationDetails lists every failed rule of a request body.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return details
}

// respondError maps a screening failure to its HTTP status.
func respondError(c *fiber.Ctx, operation string, err error) error {
	kind := services.Classify(err)

	status := fiber.StatusInternalServerError
	switch {
	case kind == models.ErrorKindExtraction:
		status = fiber.StatusUnprocessableEntity
	case kind == models.ErrorKindParse:
		status = fiber.StatusBadGateway
	case errors.Is(err, services.ErrProviderAuth):
		status = fiber.StatusBadGateway
	case kind == models.ErrorKindProvider:
		status = fiber.StatusServiceUnavailable
	}

	log.WithFields(log.Fields{
		"operation":  operation,
		"error_kind": kind,
		"status":     status,
	}).WithError(err).Error("❌ Request failed")

	return c.Status(status).JSON(models.ErrorResponse{
		Error:     err.Error(),
		ErrorKind: kind,
	})
}

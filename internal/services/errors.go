package services

import (
	"fmt"

	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/models"
)

var (
	ErrUnreadableDocument = errors.New("unreadable document")
	ErrProvider           = errors.New("model provider request failed")
	ErrProviderAuth       = errors.New("model provider rejected credentials")
)

// ParseError reports a model reply that does not match the expected schema.
type ParseError struct {
	Operation string
	Field     string
	Reason    string
	Raw       string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: malformed model reply: field %q %s", e.Operation, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: malformed model reply: %s", e.Operation, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Classify maps a screening error to the kind reported back to clients.
func Classify(err error) models.ErrorKind {
	var parseErr *ParseError
	switch {
	case errors.As(err, &parseErr):
		return models.ErrorKindParse
	case errors.Is(err, ErrUnreadableDocument):
		return models.ErrorKindExtraction
	case errors.Is(err, ErrProvider), errors.Is(err, ErrProviderAuth):
		return models.ErrorKindProvider
	default:
		return models.ErrorKindInvalid
	}
}

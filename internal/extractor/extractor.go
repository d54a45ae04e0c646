package extractor

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/mixelka/emaildraft/pkg/models"
)

// ExtractionError is returned when an upload cannot be read by its declared format reader
type ExtractionError struct {
	File        string
	ContentType string
	Err         error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %q (%s): %v", e.File, e.ContentType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor turns uploaded documents into plain text
type Extractor struct {
	logger *slog.Logger
}

// New creates a new extractor
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("component", "extractor")}
}

// Extract consumes the file payload and returns its text. Unsupported content
// types yield an empty string.
func (e *Extractor) Extract(file *models.UploadedFile) (text string, err error) {
	data, err := file.Consume()
	if err != nil {
		return "", &ExtractionError{File: file.Name, ContentType: file.ContentType, Err: err}
	}

	// Third-party format readers may panic on hostile input
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{File: file.Name, ContentType: file.ContentType, Err: fmt.Errorf("reader panic: %v", r)}
		}
	}()

	switch file.ContentType {
	case models.ContentTypeText:
		if !utf8.Valid(data) {
			return "", &ExtractionError{File: file.Name, ContentType: file.ContentType, Err: fmt.Errorf("payload is not valid UTF-8")}
		}
		text = string(data)
	case models.ContentTypePDF:
		text, err = extractPDF(data)
	case models.ContentTypeDOCX:
		text, err = extractDOCX(data)
	default:
		e.logger.Debug("unsupported content type, skipping", "file", file.Name, "content_type", file.ContentType)
		return "", nil
	}

	if err != nil {
		return "", &ExtractionError{File: file.Name, ContentType: file.ContentType, Err: err}
	}

	e.logger.Debug("extracted attachment text", "file", file.Name, "content_type", file.ContentType, "chars", utf8.RuneCountInString(text))
	return text, nil
}

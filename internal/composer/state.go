package composer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mixelka/emaildraft/internal/completion"
	"github.com/mixelka/emaildraft/internal/extractor"
	"github.com/mixelka/emaildraft/pkg/models"
)

// State of a generate action
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateExtracting   State = "extracting"
	StateGenerating   State = "generating"
	StateLinkBuilding State = "link_building"
	StateDisplaying   State = "displaying"
	StateFailed       State = "failed"
)

// Error kinds reported to presentation layers and the generation log
const (
	KindValidation       = "validation"
	KindExtraction       = "extraction"
	KindRemoteGeneration = "remote_generation"
	KindInternal         = "internal"
)

// ValidationError lists the required fields that were missing
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "please fill in all required fields: " + strings.Join(e.Missing, ", ")
}

// Outcome is the result of one generate action
type Outcome struct {
	ID     string
	State  State
	Trace  []State
	Prompt string
	Email  *models.GeneratedEmail
	Links  *models.MailLinks
	Err    error
}

// Succeeded reports whether the action reached the display state
func (o *Outcome) Succeeded() bool {
	return o.State == StateDisplaying
}

// IsWarning reports whether the failure is a recoverable validation warning
func (o *Outcome) IsWarning() bool {
	var validationErr *ValidationError
	return errors.As(o.Err, &validationErr)
}

// Visited reports whether the action passed through s
func (o *Outcome) Visited(s State) bool {
	for _, visited := range o.Trace {
		if visited == s {
			return true
		}
	}
	return false
}

// ErrorKind classifies the failure, empty on success
func (o *Outcome) ErrorKind() string {
	return ErrorKind(o.Err)
}

// UserMessage is the text shown to the user for a failed action
func (o *Outcome) UserMessage() string {
	return UserMessage(o.Err)
}

// ErrorKind classifies err into one of the Kind* constants
func ErrorKind(err error) string {
	var (
		validationErr *ValidationError
		extractionErr *extractor.ExtractionError
		remoteErr     *completion.RemoteGenerationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &extractionErr):
		return KindExtraction
	case errors.As(err, &remoteErr):
		return KindRemoteGeneration
	default:
		return KindInternal
	}
}

// UserMessage converts err into a message safe to show to the user
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		extractionErr *extractor.ExtractionError
		remoteErr     *completion.RemoteGenerationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &extractionErr):
		return fmt.Sprintf("Could not read %q. Remove or replace the file and try again.", extractionErr.File)
	case errors.As(err, &remoteErr):
		return "Email generation failed: " + remoteErr.Description
	default:
		return "Email generation failed, please try again."
	}
}

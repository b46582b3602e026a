package fetch

import (
	"errors"

	"github.com/Farman-RT/QuickSaver/internal/services"
)

// FailureReason classifies why a fetch did not produce a token.
type FailureReason string

const (
	ReasonNone      FailureReason = ""
	InvalidURL      FailureReason = "invalid_url"
	Timeout         FailureReason = "timeout"
	ProcessFailure  FailureReason = "process_failure"
	ArtifactMissing FailureReason = "artifact_missing"
)

// Reason maps an error returned by Fetch to its failure reason. Errors without
// a recognised marker are treated as process failures.
func Reason(err error) FailureReason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, services.ErrValidation):
		return InvalidURL
	case errors.Is(err, services.ErrTimeout):
		return Timeout
	case errors.Is(err, services.ErrNotFound):
		return ArtifactMissing
	default:
		return ProcessFailure
	}
}

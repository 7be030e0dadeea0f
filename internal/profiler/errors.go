package profiler

import (
	"errors"

	"github.com/BerylCAtieno/icp-profiler/internal/llm"
)

// FailureMessage is the only failure text shown to callers outside the process.
const FailureMessage = "Failed to analyze product. Please try again with a more detailed description."

var (
	ErrEmptyDescription = errors.New("empty product description")
	ErrUpstream         = errors.New("upstream service error")
	ErrEmptyResponse    = errors.New("empty response")
	ErrParse            = errors.New("parse failure")
	ErrInvalidPayload   = errors.New("invalid payload")
)

// AnalysisError is returned by Analyze for every failure. Kind is one of the
// Err* values above; Cause carries the underlying error, if any.
type AnalysisError struct {
	Kind  error
	Cause error
}

func newAnalysisError(kind, cause error) *AnalysisError {
	return &AnalysisError{Kind: kind, Cause: cause}
}

func (e *AnalysisError) Error() string {
	if e.Cause == nil {
		return "analysis failed: " + e.Kind.Error()
	}
	return "analysis failed: " + e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *AnalysisError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func isEmptyResponse(err error) bool {
	return errors.Is(err, llm.ErrEmptyResponse)
}

// Package models defines the core domain models for stage-based content pipelines.
package models

// StageStatus is the terminal outcome of one stage invocation.
type StageStatus string

const (
	StageStatusSuccess StageStatus = "success"
	StageStatusFailure StageStatus = "failure"
	StageStatusPartial StageStatus = "partial"
	StageStatusSkipped StageStatus = "skipped"
)

// StageResult is the structured outcome of one stage execution. Most stage
// output should be written into the execution context; Data is for direct
// return values only.
type StageResult struct {
	Status  StageStatus    `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

// NewSuccessResult builds a success result. Success is true only here.
func NewSuccessResult(message string) *StageResult {
	return &StageResult{
		Status:  StageStatusSuccess,
		Success: true,
		Message: message,
		Data:    map[string]any{},
	}
}

// NewFailureResult builds a failure result carrying at least one error.
func NewFailureResult(message string, errs ...string) *StageResult {
	return &StageResult{
		Status:  StageStatusFailure,
		Message: message,
		Data:    map[string]any{},
		Errors:  errs,
	}
}

// NewPartialResult builds a partial result: some items succeeded, some did
// not. Data and Errors may both be populated.
func NewPartialResult(message string, errs ...string) *StageResult {
	return &StageResult{
		Status:  StageStatusPartial,
		Message: message,
		Data:    map[string]any{},
		Errors:  errs,
	}
}

// NewSkippedResult builds a skipped result, used when a stage's run
// condition evaluates false.
func NewSkippedResult(message string) *StageResult {
	return &StageResult{
		Status:  StageStatusSkipped,
		Message: message,
		Data:    map[string]any{},
	}
}

// WithData attaches a direct return value to the result.
func (r *StageResult) WithData(key string, value any) *StageResult {
	if r.Data == nil {
		r.Data = map[string]any{}
	}

	r.Data[key] = value

	return r
}

// Failed reports whether the result should halt a phase.
func (r *StageResult) Failed() bool {
	return r.Status == StageStatusFailure
}

package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"jobfit/analyzer/internal/models"
)

const (
	// SoftMinLength is the trimmed length under which a non-blocking
	// quality warning is surfaced.
	SoftMinLength = 50
	// HardMaxLength is the trimmed length above which input is rejected.
	HardMaxLength = 10000
)

const EmptyInputMessage = "Please paste a job description before submitting."

// Result is the outcome of the pre-flight input check. A non-empty Warning
// on an accepted input signals a quality concern, not a rejection.
type Result struct {
	OK      bool
	Code    models.ErrorCode
	Message string
	Warning string
}

// CheckInput runs the local, network-free validation over one submission.
// Lengths are measured on the trimmed input, in runes.
func CheckInput(input string) Result {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Result{
			Code:    models.CodeEmptyJobDescription,
			Message: EmptyInputMessage,
		}
	}

	n := utf8.RuneCountInString(trimmed)
	if n > HardMaxLength {
		return Result{
			Code:    models.CodeInvalidRequest,
			Message: fmt.Sprintf("The job description is too long (%d characters, maximum %d). Please shorten it.", n, HardMaxLength),
		}
	}

	res := Result{OK: true}
	if n < SoftMinLength {
		res.Warning = "This looks quite short for a job description. A fuller posting usually produces a better assessment."
	}
	return res
}

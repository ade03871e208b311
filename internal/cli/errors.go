package cli

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// CommandError provides structured error reporting for CLI commands.
type CommandError struct {
	Message    string
	Cause      error
	Suggestion string
	ExitCode   int
}

// Error implements the error interface.
func (e CommandError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "command failed"
}

// Unwrap exposes the wrapped error.
func (e CommandError) Unwrap() error {
	return e.Cause
}

// ExitStatus returns the process exit code associated with the error.
func (e CommandError) ExitStatus() int {
	if e.ExitCode != 0 {
		return e.ExitCode
	}
	return 1
}

func wrapError(message string, cause error, suggestion string, exitCode int) error {
	return CommandError{Message: message, Cause: cause, Suggestion: suggestion, ExitCode: exitCode}
}

func formatSuggestion(hint string) string {
	if hint == "" {
		return ""
	}
	return fmt.Sprintf("hint: %s", hint)
}

// closestMatch returns the candidate nearest to input, or "" when nothing is
// close enough to be a plausible typo.
func closestMatch(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, candidate := range candidates {
		d := levenshtein.ComputeDistance(input, strings.ToLower(candidate))
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(input)/2) {
		return ""
	}
	return best
}

// unknownValue builds a usage error for an unsupported flag value.
func unknownValue(command, flag, value string, allowed []string) CommandError {
	suggestion := fmt.Sprintf("Use one of %s.", strings.Join(allowed, ", "))
	if match := closestMatch(value, allowed); match != "" {
		suggestion = fmt.Sprintf("Did you mean %q? %s", match, suggestion)
	}
	return CommandError{
		Message:    fmt.Sprintf("%s: unsupported %s %q", command, flag, value),
		Suggestion: suggestion,
		ExitCode:   2,
	}
}

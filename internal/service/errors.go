package service

import (
	"errors"
	"fmt"
	"strings"
)

// MissingConfigurationError 必需的提示词不存在，不会调用模型
type MissingConfigurationError struct {
	Prompts []string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("prompt not configured: %s (load the default prompts first)", strings.Join(e.Prompts, ", "))
}

func (e *MissingConfigurationError) ErrorType() string { return "missing_configuration" }

// ValidationError rejects caller input before any work is done.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string     { return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason) }
func (e *ValidationError) ErrorType() string { return "invalid_input" }

type unavailableError string

func (e unavailableError) Error() string     { return string(e) }
func (e unavailableError) ErrorType() string { return "unavailable" }

// ErrAsyncUnavailable is returned by SubmitBatch when no broker is configured.
var ErrAsyncUnavailable error = unavailableError("async batch processing is not configured")

func IsMissingConfiguration(err error) bool {
	var mc *MissingConfigurationError
	return errors.As(err, &mc)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

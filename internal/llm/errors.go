package llm

import (
	"errors"
	"fmt"
)

type configurationError string

func (e configurationError) Error() string     { return string(e) }
func (e configurationError) ErrorType() string { return "configuration_error" }

// ErrMissingCredential is returned by NewClient when no API key is configured.
var ErrMissingCredential error = configurationError("generative service credential is not configured (set ANTHROPIC_API_KEY)")

// ErrEmptyPrompt rejects a call before any network traffic.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// AdapterError 调用生成服务失败：网络错误、非 2xx、超时、空响应或熔断
type AdapterError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *AdapterError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generative service %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generative service %s failed: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error     { return e.Err }
func (e *AdapterError) ErrorType() string { return "adapter_error" }

// ParseFailure carries the untouched model output that held no usable JSON object.
type ParseFailure struct {
	Raw string
	Err error
}

func (e *ParseFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no JSON object in model output: %v", e.Err)
	}
	return "no JSON object in model output"
}

func (e *ParseFailure) Unwrap() error     { return e.Err }
func (e *ParseFailure) ErrorType() string { return "parse_failure" }

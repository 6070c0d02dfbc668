// Package errors defines the structured error types used across sitekit.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes an error by the subsystem it originates from.
type ErrorType string

const (
	ErrorTypeFetch    ErrorType = "fetch"
	ErrorTypeRender   ErrorType = "render"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeHook     ErrorType = "hook"
	ErrorTypeInternal ErrorType = "internal"
)

// SiteError is a structured error carrying a type, a stable code, and the
// page it relates to when one is known.
type SiteError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	PageID      string
	Recoverable bool
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.PageID != "" {
		parts = append(parts, "page:"+e.PageID)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinel comparisons work through wrapping.
func (e *SiteError) Is(target error) bool {
	var t *SiteError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithPage attaches page context to the error.
func (e *SiteError) WithPage(pageID string) *SiteError {
	e.PageID = pageID

	return e
}

// NewFetchError creates a fragment fetch error. Fetch failures are
// recoverable: navigation completes with fallback content.
func NewFetchError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeFetch,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenderError creates a render sequencing error.
func NewRenderError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *SiteError {
	return &SiteError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewHookError creates a lifecycle hook error. Hook failures never fail a
// navigation.
func NewHookError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeHook,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable reports whether the error allows the navigation to complete
// with degraded content.
func IsRecoverable(err error) bool {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// IsFetchError reports whether the error originated in the fragment loader.
func IsFetchError(err error) bool {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeFetch
	}

	return false
}

package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors (image fetch, timeouts)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParse represents catalog parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeValidation represents image reference validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeSend represents platform message send errors
	ErrorTypeSend ErrorType = "send"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// DispatchError represents a dispatch-specific error
type DispatchError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a later dispatch cycle may succeed
func (e *DispatchError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeSend:
		return true
	default:
		return false
	}
}

// New creates a new DispatchError
func New(errType ErrorType, component, message string, err error) *DispatchError {
	return &DispatchError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(component, message string, err error) *DispatchError {
	return New(ErrorTypeNetwork, component, message, err)
}

// NewParse creates a new parse error
func NewParse(component, message string, err error) *DispatchError {
	return New(ErrorTypeParse, component, message, err)
}

// NewValidation creates a new validation error
func NewValidation(component, message string) *DispatchError {
	return New(ErrorTypeValidation, component, message, nil)
}

// NewSend creates a new send error
func NewSend(component, message string, err error) *DispatchError {
	return New(ErrorTypeSend, component, message, err)
}

// NewCache creates a new cache error
func NewCache(component, message string, err error) *DispatchError {
	return New(ErrorTypeCache, component, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(component, message string, err error) *DispatchError {
	return New(ErrorTypePublisher, component, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *DispatchError {
	return New(ErrorTypeConfiguration, "", message, err)
}

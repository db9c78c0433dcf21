package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrNotInitialized  = fmt.Errorf("privacy manager not initialized")
	ErrLanguageUnknown = fmt.Errorf("language not in catalog")
	ErrVendorCall      = fmt.Errorf("vendor call failed")
	ErrPayloadInvalid  = fmt.Errorf("consent payload invalid")
	ErrBridgeNotReady  = fmt.Errorf("vendor bridge not ready")
	ErrSessionUnknown  = fmt.Errorf("session not found")
	ErrManagerClosed   = fmt.Errorf("privacy manager closed")
)

// DomainError wraps a sentinel error with operation context.
type DomainError struct {
	Op     string // operation name (e.g. "LoginUser")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// NewUninitializedError reports that op was invoked before Initialize
// completed. The operation name is preserved so the host can pinpoint the
// out-of-order call.
func NewUninitializedError(op string) *DomainError {
	return &DomainError{Op: op, Err: ErrNotInitialized}
}

// UninitializedOp returns the offending operation name if err is an
// initialization-guard failure, and "" otherwise.
func UninitializedOp(err error) string {
	var de *DomainError
	if errors.As(err, &de) && errors.Is(de.Err, ErrNotInitialized) {
		return de.Op
	}
	return ""
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown         ErrorCode = "UNKNOWN"
	CodeNotInitialized  ErrorCode = "NOT_INITIALIZED"
	CodeLanguageUnknown ErrorCode = "LANGUAGE_UNKNOWN"
	CodeVendorCall      ErrorCode = "VENDOR_CALL"
	CodePayloadInvalid  ErrorCode = "PAYLOAD_INVALID"
	CodeBridgeNotReady  ErrorCode = "BRIDGE_NOT_READY"
	CodeSessionUnknown  ErrorCode = "SESSION_UNKNOWN"
	CodeManagerClosed   ErrorCode = "MANAGER_CLOSED"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrNotInitialized:  CodeNotInitialized,
	ErrLanguageUnknown: CodeLanguageUnknown,
	ErrVendorCall:      CodeVendorCall,
	ErrPayloadInvalid:  CodePayloadInvalid,
	ErrBridgeNotReady:  CodeBridgeNotReady,
	ErrSessionUnknown:  CodeSessionUnknown,
	ErrManagerClosed:   CodeManagerClosed,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and walks the chain with errors.Is.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}

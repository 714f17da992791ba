package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Configuration ---

// ConfigurationFailed wraps the specific reason a backend could not be built.
func ConfigurationFailed(backend string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConfigurationFailed, Message: fmt.Sprintf("Unable to configure the %s backend.", backend),
		Details: map[string]any{"backend": backend}, Cause: cause,
	}
}

// EmptyCredential creates an error for a blank API key.
func EmptyCredential(service string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyCredential, Message: fmt.Sprintf("An API key is required for %s.", service),
		Details: map[string]any{"service": service},
	}
}

// InvalidEndpoint creates an error for an endpoint that is not an http(s) URL.
func InvalidEndpoint(endpoint string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidEndpoint, Message: "The endpoint must be an absolute http or https URL.",
		Details: map[string]any{"endpoint": endpoint},
	}
}

// ModelNotFound creates an error for a local model file that does not exist.
func ModelNotFound(path string) *AppError {
	return &AppError{
		Code: ErrCodeModelNotFound, Message: "The transcription model file was not found.",
		Details: map[string]any{"path": path},
	}
}

// UnsupportedBackend creates an error for an unknown backend type.
func UnsupportedBackend(kind string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedBackend, Message: fmt.Sprintf("Unsupported transcription backend %q.", kind),
		Details: map[string]any{"backend": kind},
	}
}

// --- Transient ---

// NetworkError creates a retryable error for a transport failure.
func NetworkError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeNetworkError, Message: "The transcription service could not be reached.",
		Retryable: true, Cause: cause,
	}
}

// RateLimited creates a retryable error for a throttled request.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		Retryable: true,
	}
}

// ServiceUnavailable creates a retryable error for a 5xx response.
func ServiceUnavailable(status int) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: "The transcription service is temporarily unavailable.",
		Retryable: true, Details: map[string]any{"status": status},
	}
}

// InvalidResponse creates a retryable error for a response that cannot be interpreted.
func InvalidResponse(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidResponse, Message: fmt.Sprintf("Unexpected response from the transcription service: %s", reason),
		Retryable: true,
	}
}

// --- Permanent ---

// AuthenticationFailed creates an error for a rejected credential.
func AuthenticationFailed() *AppError {
	return &AppError{
		Code: ErrCodeAuthenticationFailed, Message: "The API key was rejected by the transcription service.",
	}
}

// InvalidAudioFormat creates an error for audio the service refused to accept.
func InvalidAudioFormat(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidAudioFormat, Message: "The transcription service rejected the audio.",
		Details: map[string]any{"reason": reason},
	}
}

// FileNotFound creates an error for a missing audio file.
func FileNotFound(path string) *AppError {
	return &AppError{
		Code: ErrCodeFileNotFound, Message: "The audio file does not exist.",
		Details: map[string]any{"path": path},
	}
}

// AudioDecodeFailed creates an error for an audio container that cannot be parsed.
func AudioDecodeFailed(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeAudioDecodeFailed, Message: "The audio file could not be decoded.",
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// EngineFailure creates an error for a failed local engine run.
func EngineFailure(cause error) *AppError {
	return &AppError{
		Code: ErrCodeEngineFailure, Message: "The transcription engine failed.",
		Cause: cause,
	}
}

// --- Recovered / logged ---

// EnhancementFailed creates an error for a failed enhancement call.
func EnhancementFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeEnhancementFailed, Message: "Text enhancement failed.",
		Cause: cause,
	}
}

// PersistenceFailed creates an error for a result that could not be stored.
func PersistenceFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodePersistenceFailed, Message: "The transcription result could not be saved.",
		Cause: cause,
	}
}

// InvalidState creates an error for an operation that is illegal in the current state.
func InvalidState(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidState, Message: reason}
}

// Validation creates an error for input that failed validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap returns err as an AppError, wrapping plain errors as INTERNAL_ERROR.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable reports whether the outermost AppError in err's chain is retryable.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

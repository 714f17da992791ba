package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors. A backend could not be built from its settings.
const (
	// ErrCodeConfigurationFailed wraps any failure to construct a backend.
	ErrCodeConfigurationFailed ErrorCode = "CONFIGURATION_FAILED"
	// ErrCodeEmptyCredential indicates a blank API key.
	ErrCodeEmptyCredential ErrorCode = "EMPTY_CREDENTIAL"
	// ErrCodeInvalidEndpoint indicates an endpoint that is not an http(s) URL.
	ErrCodeInvalidEndpoint ErrorCode = "INVALID_ENDPOINT"
	// ErrCodeModelNotFound indicates a missing local model file.
	ErrCodeModelNotFound ErrorCode = "MODEL_NOT_FOUND"
	// ErrCodeUnsupportedBackend indicates an unknown backend type.
	ErrCodeUnsupportedBackend ErrorCode = "UNSUPPORTED_BACKEND"
)

// Transient errors (retryable)
const (
	// ErrCodeNetworkError indicates the transport failed before a response arrived.
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"
	// ErrCodeRateLimited indicates the remote service throttled the request.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeServiceUnavailable indicates a 5xx from the remote service.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeInvalidResponse indicates a response that could not be interpreted.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
)

// Permanent errors
const (
	// ErrCodeAuthenticationFailed indicates the credential was rejected.
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeInvalidAudioFormat indicates the service rejected the audio payload.
	ErrCodeInvalidAudioFormat ErrorCode = "INVALID_AUDIO_FORMAT"
	// ErrCodeFileNotFound indicates the audio file does not exist.
	ErrCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
	// ErrCodeAudioDecodeFailed indicates the audio container could not be parsed.
	ErrCodeAudioDecodeFailed ErrorCode = "AUDIO_DECODE_FAILED"
	// ErrCodeEngineFailure indicates the local engine returned a failure status.
	ErrCodeEngineFailure ErrorCode = "ENGINE_FAILURE"
)

// Post-processing, persistence and session errors
const (
	ErrCodeEnhancementFailed ErrorCode = "ENHANCEMENT_FAILED"
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeNetworkError:       true,
	ErrCodeRateLimited:        true,
	ErrCodeServiceUnavailable: true,
	ErrCodeInvalidResponse:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsConfigurationCode reports whether code belongs to the configuration class.
func IsConfigurationCode(code ErrorCode) bool {
	switch code {
	case ErrCodeConfigurationFailed, ErrCodeEmptyCredential, ErrCodeInvalidEndpoint,
		ErrCodeModelNotFound, ErrCodeUnsupportedBackend:
		return true
	}
	return false
}

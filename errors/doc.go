// Package errors provides the error taxonomy shared by every scribe component.
// Each failure is an *AppError carrying a machine-readable code and a
// retryable flag derived from that code, so retry policies and the session
// state machine can classify failures without string matching.
package errors

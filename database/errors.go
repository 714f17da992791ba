package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/scribe/errors"
)

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsBusyError reports whether err is SQLite lock contention that may clear on retry.
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

// FromDatabase converts a database error into a PERSISTENCE_FAILED AppError.
func FromDatabase(err error, op string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	appErr := apperrors.PersistenceFailed(err).WithDetail("operation", op)
	if IsNotFoundError(err) {
		appErr.WithDetail("not_found", true)
	}
	if IsBusyError(err) {
		appErr.WithDetail("busy", true)
	}
	return appErr
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error.
// Stage names the pipeline stage that raised it, when there is one.
type AppError struct {
	Code    string
	Stage   string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	prefix := e.Message
	if e.Stage != "" {
		prefix = fmt.Sprintf("[%s] %s", e.Stage, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	}
	return prefix
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an inner AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Stage:   appErr.Stage,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Stage:   appErr.Stage,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// IsCode reports whether the outermost AppError in the chain carries code
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeIngestionError  = "INGESTION_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeTransformError  = "TRANSFORM_ERROR"
	CodeTrainingError   = "TRAINING_ERROR"
	CodePromotionError  = "PROMOTION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

func stageError(code, stage, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func Ingestion(stage, message string, cause error) *AppError {
	return stageError(CodeIngestionError, stage, message, cause)
}

func Validation(stage, message string, cause error) *AppError {
	return stageError(CodeValidationError, stage, message, cause)
}

// Transform covers cleaning and feature engineering
func Transform(stage, message string, cause error) *AppError {
	return stageError(CodeTransformError, stage, message, cause)
}

func Training(stage, message string, cause error) *AppError {
	return stageError(CodeTrainingError, stage, message, cause)
}

// Promotion covers evaluation against the production model and the push itself
func Promotion(stage, message string, cause error) *AppError {
	return stageError(CodePromotionError, stage, message, cause)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

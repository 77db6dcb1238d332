package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = stderrors.New("sentinel")

func TestStageConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  string
		stage string
	}{
		{"ingestion", Ingestion("data_ingestion", "export failed", errSentinel), CodeIngestionError, "data_ingestion"},
		{"validation", Validation("data_cleaning", "validation failed", errSentinel), CodeValidationError, "data_cleaning"},
		{"transform", Transform("feature_engineering", "binning failed", errSentinel), CodeTransformError, "feature_engineering"},
		{"training", Training("model_trainer", "fit failed", errSentinel), CodeTrainingError, "model_trainer"},
		{"promotion", Promotion("model_pusher", "upload failed", errSentinel), CodePromotionError, "model_pusher"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.stage, tt.err.Stage)
			assert.True(t, stderrors.Is(tt.err, errSentinel))
			assert.Contains(t, tt.err.Error(), "["+tt.stage+"]")
		})
	}
}

func TestWrap_KeepsInnerCode(t *testing.T) {
	inner := Training("model_trainer", "fit failed", errSentinel)
	wrapped := Wrap(fmt.Errorf("context: %w", inner), "pipeline aborted")

	assert.True(t, IsCode(wrapped, CodeTrainingError))
	assert.True(t, stderrors.Is(wrapped, errSentinel))
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, CodeInternalError, GetCode(Wrap(errSentinel, "wrapped")))
	assert.Equal(t, "UNKNOWN", GetCode(errSentinel))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, errSentinel)
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Contains(t, err.Error(), "sentinel")
}

package domain

import (
	"testing"
	"time"
)

func TestPipelineError(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		details string
		runID   string
	}{
		{
			name:    "input contract error",
			code:    ErrInputContract,
			message: "empty document",
			details: "source document has zero bytes",
			runID:   "run-123",
		},
		{
			name:    "schema validation error",
			code:    ErrSchemaValidation,
			message: "output failed schema validation",
			details: "missing required field chronology.exports.pdf",
			runID:   "run-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPipelineError(tt.code, tt.message, tt.details, tt.runID)

			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, err.Message)
			}
			if err.Details != tt.details {
				t.Errorf("expected details %s, got %s", tt.details, err.Details)
			}
			if err.RunID != tt.runID {
				t.Errorf("expected runID %s, got %s", tt.runID, err.RunID)
			}
			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("timestamp should be recent, got %v", err.Timestamp)
			}

			expected := tt.code + ": " + tt.message
			if err.Error() != expected {
				t.Errorf("expected error string %s, got %s", expected, err.Error())
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		value   any
	}{
		{name: "mime type", field: "mime_type", message: "must be application/pdf", value: "image/png"},
		{name: "byte count", field: "bytes", message: "must be positive", value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)

			if err.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, err.Field)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, err.Message)
			}
			if err.Value != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, err.Value)
			}

			expected := "validation error for field '" + tt.field + "': " + tt.message
			if err.Error() != expected {
				t.Errorf("expected error string %s, got %s", expected, err.Error())
			}
		})
	}
}

func TestPipelineErrorCodes(t *testing.T) {
	expected := map[string]string{
		"ErrInputContract":    "INPUT_CONTRACT_ERROR",
		"ErrResourceFailure":  "RESOURCE_FAILURE",
		"ErrStageInternal":    "STAGE_INTERNAL_ERROR",
		"ErrSchemaValidation": "SCHEMA_VALIDATION_ERROR",
		"ErrUnrecoverable":    "UNRECOVERABLE_ERROR",
	}
	actual := map[string]string{
		"ErrInputContract":    ErrInputContract,
		"ErrResourceFailure":  ErrResourceFailure,
		"ErrStageInternal":    ErrStageInternal,
		"ErrSchemaValidation": ErrSchemaValidation,
		"ErrUnrecoverable":    ErrUnrecoverable,
	}
	for name, want := range expected {
		if got := actual[name]; got != want {
			t.Errorf("expected %s to be %s, got %s", name, want, got)
		}
	}
}

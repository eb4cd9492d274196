package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestMissingField(t *testing.T) {
	err := MissingField("time encoding", "field")
	if err.Code != ErrCodeMissingField {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMissingField)
	}
	if got, want := err.Error(), `MISSING_FIELD: time encoding requires "field"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := UserMessage(err), `time encoding requires "field"`; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

func TestBaseCompilerFailure(t *testing.T) {
	stderr := errors.New("exit status 1: Invalid specification")
	err := Wrap(ErrCodeBaseCompiler, stderr, "vl2vg")

	if got, want := err.Error(), "BASE_COMPILER: vl2vg: exit status 1: Invalid specification"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, stderr) {
		t.Error("cause is not reachable through Unwrap")
	}
	if got := UserMessage(err); got != "vl2vg" {
		t.Errorf("UserMessage() = %q, want the message without its cause", got)
	}
}

// Stages report through fmt.Errorf("<stage>: %w", ...); codes must survive.
func TestCodesThroughStages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"missing field in compile", fmt.Errorf("compile: %w", MissingField("time encoding", "field")), ErrCodeMissingField},
		{"bad json in elaborate", fmt.Errorf("elaborate: %w", New(ErrCodeInvalidSpec, "decode chart")), ErrCodeInvalidSpec},
		{"unresolved refs in check", fmt.Errorf("check: %w", New(ErrCodeInvalidSpec, "2 unresolved references")), ErrCodeInvalidSpec},
		{"timeout below base compiler", fmt.Errorf("compile: %w", Wrap(ErrCodeBaseCompiler, New(ErrCodeTimeout, "30s elapsed"), "vl2vg")), ErrCodeBaseCompiler},
		{"uncoded", fmt.Errorf("compile: %w", errors.New("boom")), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeNotFound) {
				t.Error("Is(NOT_FOUND) = true")
			}
		})
	}
}

func TestUserMessageUncoded(t *testing.T) {
	err := fmt.Errorf("read chart.json: %w", errors.New("permission denied"))
	if got, want := UserMessage(err), "read chart.json: permission denied"; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

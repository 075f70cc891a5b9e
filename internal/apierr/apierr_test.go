package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("gap not found"))
	if got := CodeOf(err); got != CodeNotFound {
		t.Errorf("CodeOf = %q, want %q", got, CodeNotFound)
	}
	if got := StatusOf(err, http.StatusInternalServerError); got != http.StatusNotFound {
		t.Errorf("StatusOf = %d, want %d", got, http.StatusNotFound)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	err := errors.New("plain")
	if got := CodeOf(err); got != "" {
		t.Errorf("CodeOf = %q, want empty", got)
	}
	if got := StatusOf(err, http.StatusInternalServerError); got != http.StatusInternalServerError {
		t.Errorf("StatusOf = %d, want fallback", got)
	}
}

func TestValidationError(t *testing.T) {
	err := Validation("bad value %d", 42)
	if err.Status != http.StatusBadRequest {
		t.Errorf("status = %d", err.Status)
	}
	if err.Error() != "bad value 42" {
		t.Errorf("message = %q", err.Error())
	}
}

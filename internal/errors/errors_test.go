package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(JokeNotFound, "No jokes found")
	if got := err.Error(); got != "[JOKE_NOT_FOUND] No jokes found" {
		t.Errorf("Unexpected error string: %q", got)
	}
}

func TestWrapIncludesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(DatasetInvalid, "dataset is not a JSON array", cause)

	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Error string should include the cause: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(InvalidIndex, "Please enter a valid number")); got != InvalidIndex {
		t.Errorf("Expected INVALID_INDEX, got %s", got)
	}

	// Wrapped further by fmt.Errorf
	wrapped := fmt.Errorf("handler: %w", New(RateLimited, "slow down"))
	if got := CodeOf(wrapped); got != RateLimited {
		t.Errorf("Expected RATE_LIMITED through wrap chain, got %s", got)
	}

	if got := CodeOf(stderrors.New("plain")); got != InternalError {
		t.Errorf("Expected INTERNAL_ERROR for plain errors, got %s", got)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(JokeNotFound, "No jokes found").
		WithDetails(map[string]interface{}{"index": 42})

	details, ok := err.Details.(map[string]interface{})
	if !ok || details["index"] != 42 {
		t.Errorf("Details not carried: %v", err.Details)
	}
}

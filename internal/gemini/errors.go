package gemini

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// TransientError tags a remote-service failure as retryable. Classification
// happens once, here at the service boundary; callers only ever check
// IsTransient.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient service error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err was classified as retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// classify tags service-unavailable failures as transient. A failure is
// transient when the API error carries status code 503, when its message
// mentions 503, or when the stringified error contains both "503" and
// "UNAVAILABLE". Anything else is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 503 {
			return &TransientError{Err: err}
		}
		if strings.Contains(apiErr.Message, "503") {
			return &TransientError{Err: err}
		}
	}

	s := err.Error()
	if strings.Contains(s, "503") && strings.Contains(s, "UNAVAILABLE") {
		return &TransientError{Err: err}
	}

	return err
}

package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/authdoc/go-authdoc-client/internal/utils"
)

const maxErrorBody = 1 << 20 // cap error bodies at 1MiB

// Error is a non-2xx response decoded into the backend's error shapes:
// a general "detail"/"error" message and/or per-field validation messages.
type Error struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Unauthorized reports whether the response carried HTTP 401.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// FieldMessage returns the first validation message for field, or "".
func (e *Error) FieldMessage(field string) string {
	if messages := e.Fields[field]; len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// Message resolves the human-readable message to surface: the first
// available field-level message (in the given priority order), then the
// general detail, then the fallback.
func (e *Error) Message(fallback string, fieldPriority ...string) string {
	candidates := make([]string, 0, len(fieldPriority)+2)
	for _, field := range fieldPriority {
		candidates = append(candidates, e.FieldMessage(field))
	}
	candidates = append(candidates, e.Detail, fallback)
	return utils.FirstNonEmpty(candidates...)
}

// decodeError turns a non-success response into an *Error. The backend
// speaks three dialects: {"detail": "..."}, {"error": "..."}, and per-field
// maps like {"password": ["..."], "email": ["..."]}.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	for key, value := range payload {
		switch v := value.(type) {
		case string:
			if key == "detail" || key == "error" {
				apiErr.Detail = v
				continue
			}
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = []string{v}
		case []any:
			messages := utils.ToStringSlice(v)
			if len(messages) == 0 {
				continue
			}
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = messages
		}
	}

	return apiErr
}

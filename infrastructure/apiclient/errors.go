package apiclient

import "fmt"

// Error is the typed failure surfaced for non-success envelope codes and
// client/server HTTP errors. Code holds the application code when the
// backend returned one, otherwise the HTTP status as a string.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	RequestID  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error code=%s status=%d request_id=%s: %s", e.Code, e.HTTPStatus, e.RequestID, e.Message)
	}
	return fmt.Sprintf("api error code=%s status=%d request_id=%s", e.Code, e.HTTPStatus, e.RequestID)
}

package session

import (
	"github.com/pkg/errors"

	"github.com/authdoc/go-authdoc-client/apiclient"
)

// Result is the value every session operation resolves to. Operations never
// leak errors or panics past this boundary: callers branch on Success and
// surface Message as-is.
type Result struct {
	Success bool
	Message string
}

// User-facing fallback messages, used when the backend supplies nothing
// better.
const (
	msgRegisterFailed     = "Unable to register. Please try again."
	msgLoginFailed        = "Invalid username or password. Please try again."
	msgTryAgain           = "Something went wrong. Please try again."
	msgMissingCredentials = "Email and password are required."
	msgOperationInFlight  = "Another sign-in operation is in progress."
	msgNoStoredSession    = "No stored session."
	msgSessionExpired     = "Your session has expired. Please sign in again."
)

func success() Result {
	return Result{Success: true}
}

func failure(message string) Result {
	return Result{Message: message}
}

// failureFromError maps a call failure onto a Result. Backend errors carry
// their own messages, resolved field-first in the given priority order;
// anything else (network, timeout, malformed body) gets the generic retry
// message.
func failureFromError(err error, fallback string, fieldPriority ...string) Result {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return failure(apiErr.Message(fallback, fieldPriority...))
	}
	return failure(msgTryAgain)
}

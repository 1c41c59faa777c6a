// Package guard decides, per navigation, whether a requested destination
// may render for the current session. The decision itself is a pure
// function; an http middleware adapter is provided for embedders that mount
// the client behind a local web UI.
package guard

import (
	"net/url"
	"strings"
)

const (
	// DefaultLoginPath is where unauthenticated navigation is sent.
	DefaultLoginPath = "/login"

	// NextParam carries the originally requested path through the login
	// redirect, for the post-login redirect back.
	NextParam = "next"
)

// Action is the outcome of a guard decision.
type Action int

const (
	// Allow renders the requested destination.
	Allow Action = iota

	// Redirect sends the navigation to Decision.Target instead.
	Redirect
)

// Decision is the result of evaluating one navigation.
type Decision struct {
	Action Action
	Target string // redirect target; empty when the action is Allow
}

// Decide evaluates a navigation: an absent user redirects to loginPath with
// the requested path preserved, a present user is allowed through.
// Stateless - re-evaluate on every navigation.
func Decide(loggedIn bool, requestedPath, loginPath string) Decision {
	if loggedIn {
		return Decision{Action: Allow}
	}
	return Decision{Action: Redirect, Target: RedirectTarget(loginPath, requestedPath)}
}

// RedirectTarget builds the login redirect carrying the originally
// requested path in the next parameter.
func RedirectTarget(loginPath, requestedPath string) string {
	if requestedPath == "" || !safeRelativePath(requestedPath) || requestedPath == loginPath {
		return loginPath
	}
	return loginPath + "?" + NextParam + "=" + url.QueryEscape(requestedPath)
}

// ConsumeNext extracts the post-login destination from a login page query.
// Only safe relative paths are honored; anything absolute or
// protocol-relative is discarded so the guard can never redirect off-site.
func ConsumeNext(query url.Values) string {
	next := query.Get(NextParam)
	if !safeRelativePath(next) {
		return ""
	}
	return next
}

func safeRelativePath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") {
		return false
	}
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	if strings.Contains(p, "://") {
		return false
	}
	return true
}

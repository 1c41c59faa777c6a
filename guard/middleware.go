package guard

import "net/http"

// Sessions is the read-only slice of session state the guard consults.
type Sessions interface {
	LoggedIn() bool
}

// Guard evaluates navigations against live session state.
type Guard struct {
	sessions  Sessions
	loginPath string
}

// Option defines a function type to modify the Guard instance.
type Option func(*Guard)

// WithLoginPath overrides the login destination.
func WithLoginPath(loginPath string) Option {
	return func(g *Guard) {
		g.loginPath = loginPath
	}
}

// New creates a Guard bound to the given session state.
func New(sessions Sessions, options ...Option) *Guard {
	g := &Guard{
		sessions:  sessions,
		loginPath: DefaultLoginPath,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Check evaluates the requested path against current session state.
func (g *Guard) Check(requestedPath string) Decision {
	return Decide(g.sessions.LoggedIn(), requestedPath, g.loginPath)
}

// RequireAuth is middleware for routes that need a signed-in user: absent
// users are redirected to the login path with the original destination
// preserved for the post-login redirect back.
func (g *Guard) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := g.Check(r.URL.RequestURI())
		if decision.Action == Redirect {
			http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

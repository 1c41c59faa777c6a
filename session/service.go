// Package session owns the client's authentication state: which user, if
// any, is currently signed in, and the operations that change that. State
// lives in a single owned container; everything else observes it through
// subscriptions.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/authdoc/go-authdoc-client/apiclient"
	"github.com/authdoc/go-authdoc-client/token"
	"github.com/authdoc/go-authdoc-client/users"
)

// Snapshot is the observable session state. User is nil when signed out.
type Snapshot struct {
	User *users.User
}

// LoggedIn reports whether a user is present in the snapshot.
func (s Snapshot) LoggedIn() bool {
	return s.User != nil
}

// Observer receives every session state transition.
type Observer func(Snapshot)

// Service is the session context: the owned state container plus the
// register/login/logout/restore operations. A Service also subscribes
// itself to the API client's invalidation hook, so a 401 anywhere clears
// both the token store (transport side) and the in-memory user (here) -
// the two can never stay out of sync for longer than one call.
type Service struct {
	api     *apiclient.Client
	tokens  token.Repo
	log     zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)

	mu         sync.Mutex
	user       *users.User
	observers  map[int]Observer
	observerID int

	// Single-flight guard: session-mutating operations never overlap.
	// A loser resolves immediately rather than queueing.
	inFlight atomic.Bool
}

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// New initializes a Service with required dependencies and registers it as
// the API client's session-invalidation subscriber.
func New(api *apiclient.Client, tokens token.Repo, options ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("[session.New] api client is required")
	}
	if tokens == nil {
		return nil, errors.New("[session.New] token repo is required")
	}

	s := &Service{
		api:       api,
		tokens:    tokens,
		log:       zerolog.Nop(),
		nowTime:   time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range options {
		opt(s)
	}
	s.log = s.log.With().Str("component", "session").Logger()

	api.OnSessionInvalidated(s.handleInvalidated)
	return s, nil
}

// Register creates a new account. The login identifier is derived from the
// email; the password is repeated into the confirmation field the backend
// expects. Success performs no state mutation - registering does not sign
// the user in.
func (s *Service) Register(ctx context.Context, name, email, password string) Result {
	if email == "" || password == "" {
		return failure(msgMissingCredentials)
	}
	if !s.begin() {
		return failure(msgOperationInFlight)
	}
	defer s.end()

	_, err := s.api.Register(ctx, apiclient.RegisterRequest{
		Username:  users.DeriveUsername(email),
		Email:     email,
		Password:  password,
		Password2: password,
		FirstName: name,
		LastName:  "",
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("register failed")
		return failureFromError(err, msgRegisterFailed, "password", "email")
	}

	s.log.Info().Str("email", email).Msg("user registered")
	return success()
}

// Login exchanges credentials for a token pair, persists it, and publishes
// the signed-in user. On failure nothing changes.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	if email == "" || password == "" {
		return failure(msgMissingCredentials)
	}
	if !s.begin() {
		return failure(msgOperationInFlight)
	}
	defer s.end()

	resp, err := s.api.Login(ctx, users.DeriveUsername(email), password)
	if err != nil {
		s.log.Debug().Err(err).Msg("login failed")
		return failureFromError(err, msgLoginFailed)
	}

	if err := s.tokens.Save(token.Credentials{Access: resp.Access, Refresh: resp.Refresh}); err != nil {
		s.log.Error().Err(err).Msg("failed to persist credentials")
		return failure(msgTryAgain)
	}

	s.setUser(&resp.User)
	s.log.Info().Int64("user_id", resp.User.ID).Msg("logged in")
	return success()
}

// Logout clears the token store and the in-memory user. Synchronous, local
// only, idempotent - no network call is made.
func (s *Service) Logout() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Error().Err(err).Msg("failed to clear credentials")
	}
	s.setUser(nil)
	s.log.Info().Msg("logged out")
}

// Restore reconstructs the session from persisted credentials on startup:
// an unexpired access token is validated against the profile endpoint; an
// expired one is exchanged once via the refresh token first. Anything else
// leaves the session signed out.
func (s *Service) Restore(ctx context.Context) Result {
	if !s.begin() {
		return failure(msgOperationInFlight)
	}
	defer s.end()

	access := s.tokens.Access()
	refresh := s.tokens.Refresh()
	if access == "" && refresh == "" {
		return failure(msgNoStoredSession)
	}

	usable := false
	if access != "" {
		if claims, err := token.Inspect(access); err == nil && !claims.Expired(s.nowTime()) {
			usable = true
		}
	}

	if !usable {
		if refresh == "" {
			s.Logout()
			return failure(msgSessionExpired)
		}
		newAccess, err := s.api.RefreshAccess(ctx, refresh)
		if err != nil {
			s.log.Debug().Err(err).Msg("refresh exchange failed")
			return s.restoreFailure(err)
		}
		if err := s.tokens.Save(token.Credentials{Access: newAccess}); err != nil {
			s.log.Error().Err(err).Msg("failed to persist refreshed access token")
			return failure(msgTryAgain)
		}
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("profile probe failed")
		return s.restoreFailure(err)
	}

	s.setUser(user)
	s.log.Info().Int64("user_id", user.ID).Msg("session restored")
	return success()
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Service) CurrentUser() *users.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// LoggedIn reports whether a user is currently signed in. Unlike the token
// store's presence check this reflects the in-memory session.
func (s *Service) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Subscribe registers an observer for session transitions and returns its
// cancel function. The observer is invoked after each state change, outside
// the service lock.
func (s *Service) Subscribe(observer Observer) (cancel func()) {
	s.mu.Lock()
	id := s.observerID
	s.observerID++
	s.observers[id] = observer
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// handleInvalidated is the transport's 401 hook: the token store is already
// cleared by the pipeline, this drops the in-memory user to match.
func (s *Service) handleInvalidated() {
	s.log.Warn().Msg("session invalidated by server")
	s.setUser(nil)
}

func (s *Service) setUser(user *users.User) {
	s.mu.Lock()
	s.user = user
	snapshot := Snapshot{}
	if user != nil {
		copied := *user
		snapshot.User = &copied
	}
	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(snapshot)
	}
}

// restoreFailure distinguishes an invalidated session (the 401 watcher has
// already cleared the store) from a transient failure that should leave the
// stored credentials alone.
func (s *Service) restoreFailure(err error) Result {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return failure(msgSessionExpired)
	}
	return failureFromError(err, msgTryAgain)
}

func (s *Service) begin() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

func (s *Service) end() {
	s.inFlight.Store(false)
}

// Package filerepo persists the credential pair to a file in the user's
// data folder, the native-client analog of browser-origin local storage:
// credentials survive process restarts but never leave the machine.
package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	clienterrors "github.com/authdoc/go-authdoc-client/internal/errors"
	"github.com/authdoc/go-authdoc-client/token"
)

const credentialsFile = "credentials.json"

var _ token.Repo = (*Store)(nil)

// Store is a file-backed token.Repo. Reads are served from memory; every
// mutation is written through to disk atomically (temp file + rename).
type Store struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	creds      token.Credentials
	log        zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPassphrase enables at-rest encryption of the credential file. A store
// opened with a passphrase can only read files written with the same one.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		s.passphrase = passphrase
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// New opens (or creates) the credential store under folder.
func New(folder string, options ...Option) (*Store, error) {
	if folder == "" {
		return nil, errors.New("[filerepo.New] folder is required")
	}

	s := &Store{
		path: filepath.Join(folder, credentialsFile),
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.log = s.log.With().Str("component", "token_store").Logger()

	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] MkdirAll")
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes whichever of the two values is non-empty. Empty fields leave
// the stored value untouched.
func (s *Store) Save(creds token.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creds.Access != "" {
		s.creds.Access = creds.Access
	}
	if creds.Refresh != "" {
		s.creds.Refresh = creds.Refresh
	}
	return s.persistLocked()
}

// Access returns the stored access token, or "" if absent.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Access
}

// Refresh returns the stored refresh token, or "" if absent.
func (s *Store) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Refresh
}

// Clear removes both credentials and deletes the backing file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = token.Credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Store.Clear] Remove")
	}
	return nil
}

// LoggedIn reports whether an access token is present. Presence only - the
// token may already have expired server-side.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Access != ""
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[Store.load] ReadFile")
	}

	if isSealed(data) {
		if s.passphrase == "" {
			return errors.Wrap(clienterrors.ErrWrongPassphrase, "[Store.load] store is encrypted")
		}
		data, err = open(data, s.passphrase)
		if err != nil {
			return err
		}
	}

	var creds token.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return errors.Wrap(clienterrors.ErrStoreCorrupt, "[Store.load] "+err.Error())
	}
	s.creds = creds
	return nil
}

func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.creds)
	if err != nil {
		return errors.Wrap(err, "[Store.persistLocked] Marshal")
	}

	if s.passphrase != "" {
		data, err = seal(data, s.passphrase)
		if err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), credentialsFile+".*")
	if err != nil {
		return errors.Wrap(err, "[Store.persistLocked] CreateTemp")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.persistLocked] Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.persistLocked] Chmod")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.persistLocked] Close")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.persistLocked] Rename")
	}

	s.log.Debug().Str("path", s.path).Bool("encrypted", s.passphrase != "").Msg("credentials persisted")
	return nil
}

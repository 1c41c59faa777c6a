package repofake

import (
	"sync"

	"github.com/authdoc/go-authdoc-client/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo is an in-memory token.Repo for tests and ephemeral sessions.
type FakeTokenRepo struct {
	lock  sync.RWMutex
	creds token.Credentials

	// SaveErr / ClearErr, when set, are returned by the corresponding
	// operation to exercise storage failure paths.
	SaveErr  error
	ClearErr error
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{}
}

func (tr *FakeTokenRepo) Save(creds token.Credentials) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.SaveErr != nil {
		return tr.SaveErr
	}
	if creds.Access != "" {
		tr.creds.Access = creds.Access
	}
	if creds.Refresh != "" {
		tr.creds.Refresh = creds.Refresh
	}
	return nil
}

func (tr *FakeTokenRepo) Access() string {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.creds.Access
}

func (tr *FakeTokenRepo) Refresh() string {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.creds.Refresh
}

func (tr *FakeTokenRepo) Clear() error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.ClearErr != nil {
		return tr.ClearErr
	}
	tr.creds = token.Credentials{}
	return nil
}

func (tr *FakeTokenRepo) LoggedIn() bool {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.creds.Access != ""
}

package token

// Storage keys for the persisted credential pair. Fixed so that the file
// layout stays stable across releases.
const (
	AccessKey  = "access_token"
	RefreshKey = "refresh_token"
)

// Credentials is the short-lived access / longer-lived refresh pair issued
// on login. Either field may be empty independently: an access token can be
// cleared while the refresh token persists, and vice versa.
type Credentials struct {
	Access  string `json:"access_token,omitempty"`
	Refresh string `json:"refresh_token,omitempty"`
}

// Empty reports whether neither credential is present.
func (c Credentials) Empty() bool {
	return c.Access == "" && c.Refresh == ""
}

// Repo defines the interface for credential storage backends.
// Implementations must be safe for concurrent use.
type Repo interface {
	// Save writes whichever of the two values is non-empty. Empty fields
	// leave the stored value untouched. Idempotent.
	Save(creds Credentials) error

	// Access returns the stored access token, or "" if never set or cleared.
	Access() string

	// Refresh returns the stored refresh token, or "" if never set or cleared.
	Refresh() string

	// Clear removes both credentials. Idempotent, safe when nothing is stored.
	Clear() error

	// LoggedIn reports whether an access token is present. Presence only -
	// an expired token that hasn't been cleared still counts.
	LoggedIn() bool
}

package users

import (
	"encoding/json"
	"strings"
)

// User is the record the backend returns on login. The client treats it as
// opaque beyond the identifier: the original payload is kept verbatim and
// round-trips unmodified, so consumers may rely on fields the client itself
// never interprets.
type User struct {
	ID        int64  `json:"id,omitempty"`         // Unique identifier for the user
	Username  string `json:"username,omitempty"`   // Login identifier derived from the email
	Email     string `json:"email,omitempty"`      // User's email address
	FirstName string `json:"first_name,omitempty"` // First name of the user
	LastName  string `json:"last_name,omitempty"`  // Last name of the user

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps the full payload.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*u = User(decoded)
	u.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON passes the original payload through unmodified when present.
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	type alias User
	return json.Marshal(alias(u))
}

// Raw returns the backend's original payload, or nil if the record was
// constructed locally.
func (u User) Raw() json.RawMessage {
	return u.raw
}

// DisplayName returns the friendliest non-empty name available.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// DeriveUsername returns the login identifier the backend expects: the text
// preceding the first "@" of the email address.
func DeriveUsername(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

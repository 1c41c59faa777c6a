package users_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authdoc/go-authdoc-client/users"
)

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{email: "jane@x.com", want: "jane"},
		{email: "jane.doe@example.co.uk", want: "jane.doe"},
		{email: "a@b@c", want: "a"},
		{email: "noatsign", want: "noatsign"},
		{email: "", want: ""},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, users.DeriveUsername(tc.email), tc.email)
	}
}

func TestUserKeepsUnknownFields(t *testing.T) {
	payload := `{"id":7,"username":"jane","email":"jane@x.com","is_staff":true,"date_joined":"2025-01-02T10:00:00Z"}`

	var user users.User
	require.NoError(t, json.Unmarshal([]byte(payload), &user))
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "jane", user.Username)

	// Fields the client never interprets survive the round trip.
	out, err := json.Marshal(user)
	require.NoError(t, err)
	require.JSONEq(t, payload, string(out))
	require.JSONEq(t, payload, string(user.Raw()))
}

func TestLocallyConstructedUserMarshals(t *testing.T) {
	user := users.User{ID: 1, Username: "jane"}
	require.Nil(t, user.Raw())

	out, err := json.Marshal(user)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1,"username":"jane"}`, string(out))
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user users.User
		want string
	}{
		{
			name: "full name",
			user: users.User{FirstName: "Jane", LastName: "Doe", Username: "jane"},
			want: "Jane Doe",
		},
		{
			name: "first name only",
			user: users.User{FirstName: "Jane", Username: "jane"},
			want: "Jane",
		},
		{
			name: "username when no name",
			user: users.User{Username: "jane", Email: "jane@x.com"},
			want: "jane",
		},
		{
			name: "email as last resort",
			user: users.User{Email: "jane@x.com"},
			want: "jane@x.com",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.user.DisplayName())
		})
	}
}

package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

// --- Tests ---

func TestUserInfo_UnmarshalTokenKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "token", body: `{"_id":"u1","token":"a"}`, want: "a"},
		{name: "accessToken", body: `{"_id":"u1","accessToken":"b"}`, want: "b"},
		{name: "data.token", body: `{"_id":"u1","data":{"token":"c"}}`, want: "c"},
		{name: "token wins", body: `{"token":"a","accessToken":"b","data":{"token":"c"}}`, want: "a"},
		{name: "none", body: `{"_id":"u1"}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u UserInfo
			require.NoError(t, json.Unmarshal([]byte(tt.body), &u))
			assert.Equal(t, tt.want, u.Token)
		})
	}
}

func TestUserInfo_IsAdmin(t *testing.T) {
	var nilUser *UserInfo
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&UserInfo{Role: "user"}).IsAdmin())
	assert.True(t, (&UserInfo{Role: RoleAdmin}).IsAdmin())
}

func TestUserInfo_Merge(t *testing.T) {
	u := UserInfo{ID: "u1", Name: "Old", Email: "old@x.com", Role: "user", Token: "tok"}

	got := u.Merge(UserInfo{Name: "New", Email: "new@x.com"})

	assert.Equal(t, UserInfo{ID: "u1", Name: "New", Email: "new@x.com", Role: "user", Token: "tok"}, got)
}

func TestUserInfo_Expired(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "empty", token: "", want: false},
		{name: "opaque token", token: "not-a-jwt", want: false},
		{name: "no exp", token: signedToken(t, jwt.MapClaims{"id": "u1"}), want: false},
		{name: "valid", token: signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), want: false},
		{name: "expired", token: signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), want: true},
		{name: "expires now", token: signedToken(t, jwt.MapClaims{"exp": now.Unix()}), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &UserInfo{Token: tt.token}
			assert.Equal(t, tt.want, u.Expired(now))
		})
	}
}

func TestCredentials_Validate(t *testing.T) {
	require.NoError(t, Credentials{Email: "a@x.com", Password: "pw"}.Validate())
	require.ErrorIs(t, Credentials{Email: "a@x.com"}.Validate(), ErrMissingPassword)
	require.ErrorIs(t, Credentials{Password: "pw"}.Validate(), ErrMissingPassword)
}

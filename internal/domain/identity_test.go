package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIdentity(t *testing.T) {
	testCases := []struct {
		name    string
		id      UserID
		display string
		wantErr error
	}{
		{name: "valid", id: "u1", display: "Ann"},
		{name: "empty user id", id: "", display: "Ann", wantErr: ErrUserIDEmpty},
		{name: "user id too long", id: UserID(strings.Repeat("x", MaxUserIDLen+1)), display: "Ann", wantErr: ErrUserIDTooLong},
		{name: "empty display name", id: "u1", display: "", wantErr: ErrDisplayNameEmpty},
		{name: "display name too long", id: "u1", display: strings.Repeat("x", MaxDisplayNameLen+1), wantErr: ErrDisplayNameTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewIdentity(tc.id, tc.display, "https://cdn.example/a.png")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.id, got.UserID)
			assert.Equal(t, tc.display, got.Name)
			assert.Equal(t, "https://cdn.example/a.png", got.AvatarURL)
		})
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "", want: RoleUser},
		{in: "USER", want: RoleUser},
		{in: "user", want: RoleUser},
		{in: " Admin ", want: RoleAdmin},
		{in: "ADMIN", want: RoleAdmin},
		{in: "organizer", wantErr: true},
		{in: "admins", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleChecks(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleUser.IsAdmin())
	assert.False(t, Role("admin").IsAdmin())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("").Valid())
}

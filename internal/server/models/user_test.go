package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_AddRole(t *testing.T) {
	u := &User{Roles: []string{"player"}}

	assert.True(t, u.AddRole("vip"))
	assert.False(t, u.AddRole("vip"))
	assert.False(t, u.AddRole(""))
	assert.Equal(t, []string{"player", "vip"}, u.Roles)
}

func TestRolesColumn(t *testing.T) {
	assert.Equal(t, "admin,player", JoinRoles([]string{"admin", "player"}))
	assert.Equal(t, []string{"admin", "player"}, SplitRoles(" admin, ,player"))
	assert.Nil(t, SplitRoles(""))
}

func TestUserSession_ExpiresIn(t *testing.T) {
	now := time.Now()
	s := &UserSession{}
	assert.Zero(t, s.ExpiresIn(now))

	s.ExpiresAt = now.Add(time.Hour)
	assert.Equal(t, time.Hour, s.ExpiresIn(now))
}

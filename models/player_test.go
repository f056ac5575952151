package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerRole(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, PlayerRole("SUPERUSER").Valid())
	assert.False(t, PlayerRole("").Valid())

	assert.True(t, RoleOwner.IsEditor())
	assert.True(t, RoleAdmin.IsEditor())
	assert.False(t, RoleUser.IsEditor())
}

func TestPlayerDisplayName(t *testing.T) {
	nickname := "Anita"
	empty := ""

	tests := []struct {
		name   string
		player Player
		want   string
	}{
		{name: "nickname wins", player: Player{Name: "Ana", Nickname: &nickname}, want: "Anita"},
		{name: "empty nickname falls back to name", player: Player{Name: "Ana", Nickname: &empty}, want: "Ana"},
		{name: "no nickname", player: Player{Name: "Ana"}, want: "Ana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.player.DisplayName())
		})
	}
}

func TestPlayerIsLinked(t *testing.T) {
	userID := "u1"

	assert.False(t, (&Player{}).IsLinked())
	assert.True(t, (&Player{UserID: &userID}).IsLinked())
}

func TestPlayerCanEdit(t *testing.T) {
	owner := &Player{ID: "owner", Role: RoleOwner}
	admin := &Player{ID: "admin", Role: RoleAdmin}
	otherAdmin := &Player{ID: "admin2", Role: RoleAdmin}
	user := &Player{ID: "user", Role: RoleUser}

	tests := []struct {
		name   string
		actor  *Player
		target *Player
		want   bool
	}{
		{name: "everyone edits themselves", actor: user, target: user, want: true},
		{name: "owner edits admins", actor: owner, target: admin, want: true},
		{name: "owner edits users", actor: owner, target: user, want: true},
		{name: "admin edits users", actor: admin, target: user, want: true},
		{name: "admin cannot edit other admins", actor: admin, target: otherAdmin, want: false},
		{name: "admin cannot edit the owner", actor: admin, target: owner, want: false},
		{name: "user cannot edit others", actor: user, target: admin, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.CanEdit(tt.target))
		})
	}
}

func TestDefaultTeamName(t *testing.T) {
	assert.Equal(t, "Team A", DefaultTeamName(TeamSlotA))
	assert.Equal(t, "Team B", DefaultTeamName(TeamSlotB))
}

package auth

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"suggestbot/internal/database/models"
)

func settingsWithLists(lists *models.PermissionLists) *models.GuildSettings {
	return &models.GuildSettings{GuildID: "guild-1", Permissions: lists}
}

func TestCanReview(t *testing.T) {
	resolver := NewResolver()

	manageGuild := Actor{UserID: "mod", Permissions: discordgo.PermissionManageServer}
	plain := Actor{UserID: "user-1", RoleIDs: []string{"role-a"}}

	t.Run("NoConfigurationDeniesWithoutManageGuild", func(t *testing.T) {
		assert.False(t, resolver.CanReview(plain, settingsWithLists(nil)))
		assert.False(t, resolver.CanReview(plain, nil))
	})

	t.Run("ManageGuildAlwaysAllows", func(t *testing.T) {
		assert.True(t, resolver.CanReview(manageGuild, settingsWithLists(nil)))

		// Even an explicit denial does not override the capability.
		denied := settingsWithLists(&models.PermissionLists{
			Denied: models.PermissionSet{Users: []string{"mod"}},
		})
		assert.True(t, resolver.CanReview(manageGuild, denied))
	})

	t.Run("AllowedUserAllows", func(t *testing.T) {
		settings := settingsWithLists(&models.PermissionLists{
			Allowed: models.PermissionSet{Users: []string{"user-1"}},
		})
		assert.True(t, resolver.CanReview(plain, settings))
	})

	t.Run("DeniedUserBeatsAllowedUser", func(t *testing.T) {
		settings := settingsWithLists(&models.PermissionLists{
			Allowed: models.PermissionSet{Users: []string{"user-1"}},
			Denied:  models.PermissionSet{Users: []string{"user-1"}},
		})
		assert.False(t, resolver.CanReview(plain, settings))
	})

	t.Run("AllowedRoleAllows", func(t *testing.T) {
		settings := settingsWithLists(&models.PermissionLists{
			Allowed: models.PermissionSet{Roles: []string{"role-a"}},
		})
		assert.True(t, resolver.CanReview(plain, settings))
	})

	t.Run("DeniedRoleBeatsAllowedRole", func(t *testing.T) {
		actor := Actor{UserID: "user-2", RoleIDs: []string{"role-a", "role-b"}}
		settings := settingsWithLists(&models.PermissionLists{
			Allowed: models.PermissionSet{Roles: []string{"role-a"}},
			Denied:  models.PermissionSet{Roles: []string{"role-b"}},
		})
		assert.False(t, resolver.CanReview(actor, settings))
	})

	t.Run("UserDenialBlocksUserPathNotRolePath", func(t *testing.T) {
		// A denied user fails rule 3, but rule 4 checks roles only, so an
		// allowed role still grants access unless the role is denied too.
		actor := Actor{UserID: "user-3", RoleIDs: []string{"role-a"}}
		settings := settingsWithLists(&models.PermissionLists{
			Allowed: models.PermissionSet{Users: []string{"user-3"}, Roles: []string{"role-a"}},
			Denied:  models.PermissionSet{Users: []string{"user-3"}},
		})
		assert.True(t, resolver.CanReview(actor, settings))
	})

	t.Run("ListedButNotAllowedDenies", func(t *testing.T) {
		settings := settingsWithLists(&models.PermissionLists{
			Allowed: models.PermissionSet{Users: []string{"someone-else"}},
		})
		assert.False(t, resolver.CanReview(plain, settings))
	})

	t.Run("TotalForArbitraryActors", func(t *testing.T) {
		// Every (actor, settings) pair resolves to exactly one of
		// allow/deny without error, including empty actors.
		assert.NotPanics(t, func() {
			_ = resolver.CanReview(Actor{}, settingsWithLists(&models.PermissionLists{}))
		})
	})
}

func TestActorFromMember(t *testing.T) {
	member := &discordgo.Member{
		User:        &discordgo.User{ID: "user-9"},
		Roles:       []string{"role-x"},
		Permissions: discordgo.PermissionManageServer,
	}
	actor := ActorFromMember(member)
	assert.Equal(t, "user-9", actor.UserID)
	assert.Equal(t, []string{"role-x"}, actor.RoleIDs)
	assert.True(t, actor.HasManageGuild())

	assert.Equal(t, Actor{}, ActorFromMember(nil))
}

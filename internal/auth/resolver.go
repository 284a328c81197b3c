package auth

import (
	"github.com/bwmarrin/discordgo"

	"suggestbot/internal/database/models"
)

// Actor is the identity a review decision is authorized against.
type Actor struct {
	UserID      string
	RoleIDs     []string
	Permissions int64
}

// ActorFromMember builds an Actor from an interaction member.
func ActorFromMember(member *discordgo.Member) Actor {
	if member == nil || member.User == nil {
		return Actor{}
	}
	return Actor{
		UserID:      member.User.ID,
		RoleIDs:     member.Roles,
		Permissions: member.Permissions,
	}
}

// HasManageGuild reports whether the actor holds the native moderation
// capability.
func (a Actor) HasManageGuild() bool {
	return a.Permissions&discordgo.PermissionManageServer != 0
}

// ReviewAuthorizer decides whether an actor may change a suggestion's
// outcome.
type ReviewAuthorizer interface {
	CanReview(actor Actor, settings *models.GuildSettings) bool
}

// Resolver implements ReviewAuthorizer against the guild's allow/deny lists.
type Resolver struct{}

// NewResolver creates a new permission resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// CanReview applies the authorization precedence, first match wins:
//
//  1. no permission configuration and no ManageGuild -> deny
//  2. ManageGuild -> allow (always overrides list configuration)
//  3. user in allowed.users and not in denied.users -> allow
//  4. some role in allowed.roles and no role in denied.roles -> allow
//  5. deny
//
// ManageGuild is the escape hatch that keeps working even when the lists
// are misconfigured; a per-user denial inside an allowed role is honored.
func (r *Resolver) CanReview(actor Actor, settings *models.GuildSettings) bool {
	var lists *models.PermissionLists
	if settings != nil {
		lists = settings.Permissions
	}

	if lists == nil {
		return actor.HasManageGuild()
	}
	if actor.HasManageGuild() {
		return true
	}
	if lists.Allowed.ContainsUser(actor.UserID) && !lists.Denied.ContainsUser(actor.UserID) {
		return true
	}
	if lists.Allowed.ContainsAnyRole(actor.RoleIDs) && !lists.Denied.ContainsAnyRole(actor.RoleIDs) {
		return true
	}
	return false
}

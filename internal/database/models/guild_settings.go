package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Outcome categories used as keys in LogChannels and DecisionChannels.
const (
	OutcomeAll         = "all"
	OutcomeApproved    = "approved"
	OutcomeDenied      = "denied"
	OutcomeConsidered  = "considered"
	OutcomeImplemented = "implemented"
)

// PermissionSet is one side (users + roles) of the reviewer allow/deny lists.
type PermissionSet struct {
	Users []string `bson:"users"`
	Roles []string `bson:"roles"`
}

// ContainsUser reports whether the set names the given user ID.
func (p PermissionSet) ContainsUser(userID string) bool {
	for _, id := range p.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// ContainsAnyRole reports whether the set names any of the given role IDs.
func (p PermissionSet) ContainsAnyRole(roleIDs []string) bool {
	for _, id := range p.Roles {
		for _, role := range roleIDs {
			if id == role {
				return true
			}
		}
	}
	return false
}

// PermissionLists holds the reviewer allow and deny lists for a guild.
type PermissionLists struct {
	Allowed PermissionSet `bson:"allowed"`
	Denied  PermissionSet `bson:"denied"`
}

// GuildSettings is a sparse bag of independent per-guild toggles and values.
// Booleans use presence-as-enabled semantics: a field that was never set
// decodes to its zero value. There are no cross-field invariants; each field
// is set and cleared independently.
type GuildSettings struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	GuildID string             `bson:"guild_id"`

	SuggestionChannelID string `bson:"suggestion_channel_id,omitempty"`
	ReviewChannelID     string `bson:"review_channel_id,omitempty"`

	// Outcome category -> channel ID.
	LogChannels      map[string]string `bson:"log_channels,omitempty"`
	DecisionChannels map[string]string `bson:"decision_channels,omitempty"`

	UpvoteEmoji   string `bson:"upvote_emoji,omitempty"`
	DownvoteEmoji string `bson:"downvote_emoji,omitempty"`

	SuggestionPingRoleID string `bson:"suggestion_ping_role_id,omitempty"`

	AutoThread           bool `bson:"auto_thread,omitempty"`
	AnonymousSuggestions bool `bson:"anonymous_suggestions,omitempty"`
	DMOnChoiceDisabled   bool `bson:"dm_on_choice_disabled,omitempty"`
	DMAllVoters          bool `bson:"dm_all_voters,omitempty"`
	AttachImagesDisabled bool `bson:"attach_images_disabled,omitempty"`
	DeleteOnDecision     bool `bson:"delete_on_decision,omitempty"`

	Permissions *PermissionLists `bson:"permissions,omitempty"`
}

// OutcomeChannels returns the channel IDs configured for the "all" category
// plus the given specific category, deduplicated, from the given map.
func OutcomeChannels(channels map[string]string, outcome string) []string {
	if len(channels) == 0 {
		return nil
	}
	var ids []string
	if id := channels[OutcomeAll]; id != "" {
		ids = append(ids, id)
	}
	if id := channels[outcome]; id != "" && (len(ids) == 0 || ids[0] != id) {
		ids = append(ids, id)
	}
	return ids
}

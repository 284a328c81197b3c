package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVotersDeduplicatesAcrossSets(t *testing.T) {
	// A stale document could briefly show a user in both sets; the union
	// must still count them once.
	votes := Votes{
		Up:   []string{"a", "b"},
		Down: []string{"b", "c"},
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, votes.Voters())
}

func TestVotersEmpty(t *testing.T) {
	assert.Empty(t, Votes{}.Voters())
}

func TestVoteDirectionOpposite(t *testing.T) {
	assert.Equal(t, VoteDown, VoteUp.Opposite())
	assert.Equal(t, VoteUp, VoteDown.Opposite())
}

func TestVoteDirectionValid(t *testing.T) {
	assert.True(t, VoteUp.Valid())
	assert.True(t, VoteDown.Valid())
	assert.False(t, VoteDirection("sideways").Valid())
}

func TestDecided(t *testing.T) {
	assert.False(t, (&Suggestion{Status: StatusOpen}).Decided())
	assert.True(t, (&Suggestion{Status: StatusApproved}).Decided())
	assert.True(t, (&Suggestion{Status: StatusDenied}).Decided())
	assert.True(t, (&Suggestion{Status: StatusImplemented}).Decided())
}

func TestOutcomeChannels(t *testing.T) {
	channels := map[string]string{
		OutcomeAll:      "c-all",
		OutcomeApproved: "c-approved",
	}

	assert.Equal(t, []string{"c-all", "c-approved"}, OutcomeChannels(channels, OutcomeApproved))
	assert.Equal(t, []string{"c-all"}, OutcomeChannels(channels, OutcomeDenied))
	assert.Nil(t, OutcomeChannels(nil, OutcomeApproved))
}

func TestOutcomeChannelsDeduplicates(t *testing.T) {
	channels := map[string]string{
		OutcomeAll:    "same",
		OutcomeDenied: "same",
	}
	assert.Equal(t, []string{"same"}, OutcomeChannels(channels, OutcomeDenied))
}

func TestPermissionSetLookups(t *testing.T) {
	set := PermissionSet{
		Users: []string{"u1"},
		Roles: []string{"r1", "r2"},
	}
	assert.True(t, set.ContainsUser("u1"))
	assert.False(t, set.ContainsUser("u2"))
	assert.True(t, set.ContainsAnyRole([]string{"r9", "r2"}))
	assert.False(t, set.ContainsAnyRole([]string{"r9"}))
	assert.False(t, set.ContainsAnyRole(nil))
}

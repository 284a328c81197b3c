package suggestions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suggestbot/internal/database/models"
)

func TestVoteCustomIDRoundTrip(t *testing.T) {
	id := VoteCustomID("123456789012345678", 42, models.VoteUp)
	assert.Equal(t, "voteSuggestion-123456789012345678-42-up", id)

	guildID, number, direction, err := ParseVoteID(id)
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678", guildID)
	assert.Equal(t, 42, number)
	assert.Equal(t, models.VoteUp, direction)
}

func TestReviewCustomIDRoundTrip(t *testing.T) {
	id := ReviewCustomID("987654321098765432", 7, VerdictDeny)
	assert.Equal(t, "reviewSuggestion-987654321098765432-7-deny", id)

	guildID, number, verdict, err := ParseReviewID(id)
	require.NoError(t, err)
	assert.Equal(t, "987654321098765432", guildID)
	assert.Equal(t, 7, number)
	assert.Equal(t, VerdictDeny, verdict)
}

func TestReasonModalIDRoundTrip(t *testing.T) {
	id := ReasonModalID(13)
	assert.Equal(t, "reviewSuggestion-13", id)

	number, err := ParseReasonModalID(id)
	require.NoError(t, err)
	assert.Equal(t, 13, number)
}

func TestParseVoteIDRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"voteSuggestion",
		"voteSuggestion-1-2",
		"reviewSuggestion-1-2-up",
		"voteSuggestion-1-x-up",
		"voteSuggestion-1-2-sideways",
	}
	for _, id := range cases {
		_, _, _, err := ParseVoteID(id)
		assert.Error(t, err, "expected %q to be rejected", id)
	}
}

func TestParseReviewIDRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"reviewSuggestion-1-2-maybe",
		"reviewSuggestion-1-x-approve",
		"voteSuggestion-1-2-approve",
		"reviewSuggestion-1",
	}
	for _, id := range cases {
		_, _, _, err := ParseReviewID(id)
		assert.Error(t, err, "expected %q to be rejected", id)
	}
}

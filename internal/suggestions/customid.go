package suggestions

import (
	"fmt"
	"strconv"
	"strings"

	"suggestbot/internal/database/models"
)

// Component custom ID prefixes. Vote and review buttons carry the guild ID
// and suggestion number so a button keeps working after a restart; the parts
// are joined with "-", which is safe because snowflakes never contain one.
const (
	ActionVote      = "voteSuggestion"
	ActionReview    = "reviewSuggestion"
	ActionToggleDMs = "toggleDMs"

	VerdictApprove = "approve"
	VerdictDeny    = "deny"
)

// VoteCustomID builds the custom ID for a vote button.
func VoteCustomID(guildID string, number int, direction models.VoteDirection) string {
	return fmt.Sprintf("%s-%s-%d-%s", ActionVote, guildID, number, direction)
}

// ReviewCustomID builds the custom ID for an approve/deny button.
func ReviewCustomID(guildID string, number int, verdict string) string {
	return fmt.Sprintf("%s-%s-%d-%s", ActionReview, guildID, number, verdict)
}

// ReasonModalID builds the custom ID for the reason modal. The guild and
// reviewer come from the interaction itself, so only the number is encoded.
func ReasonModalID(number int) string {
	return fmt.Sprintf("%s-%d", ActionReview, number)
}

// ParseVoteID decodes a vote button custom ID.
func ParseVoteID(customID string) (guildID string, number int, direction models.VoteDirection, err error) {
	parts := strings.Split(customID, "-")
	if len(parts) != 4 || parts[0] != ActionVote {
		return "", 0, "", fmt.Errorf("malformed vote custom ID %q", customID)
	}
	number, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, "", fmt.Errorf("malformed vote custom ID %q: %w", customID, err)
	}
	direction = models.VoteDirection(parts[3])
	if !direction.Valid() {
		return "", 0, "", fmt.Errorf("malformed vote custom ID %q: unknown direction", customID)
	}
	return parts[1], number, direction, nil
}

// ParseReviewID decodes an approve/deny button custom ID.
func ParseReviewID(customID string) (guildID string, number int, verdict string, err error) {
	parts := strings.Split(customID, "-")
	if len(parts) != 4 || parts[0] != ActionReview {
		return "", 0, "", fmt.Errorf("malformed review custom ID %q", customID)
	}
	number, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, "", fmt.Errorf("malformed review custom ID %q: %w", customID, err)
	}
	verdict = parts[3]
	if verdict != VerdictApprove && verdict != VerdictDeny {
		return "", 0, "", fmt.Errorf("malformed review custom ID %q: unknown verdict", customID)
	}
	return parts[1], number, verdict, nil
}

// ParseReasonModalID decodes the reason modal custom ID.
func ParseReasonModalID(customID string) (number int, err error) {
	parts := strings.Split(customID, "-")
	if len(parts) != 2 || parts[0] != ActionReview {
		return 0, fmt.Errorf("malformed modal custom ID %q", customID)
	}
	number, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed modal custom ID %q: %w", customID, err)
	}
	return number, nil
}

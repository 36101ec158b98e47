package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// VoteType is a member's reaction to a candidate.
type VoteType string

const (
	VoteUp      VoteType = "up"
	VoteDown    VoteType = "down"
	VoteNeutral VoteType = "neutral"
)

// ParseVoteType accepts up/down/neutral and the like/dislike spellings clients send.
func ParseVoteType(s string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote", "like":
		return VoteUp, nil
	case "down", "downvote", "dislike":
		return VoteDown, nil
	case "neutral", "none", "":
		return VoteNeutral, nil
	default:
		return "", eris.Wrapf(ErrInvalidInput, "model: unknown vote type %q", s)
	}
}

// Vote is one member's current vote on one candidate. At most one vote per
// (CandidateID, UserID) is active; a newer vote replaces the older one.
type Vote struct {
	CandidateID string    `json:"candidate_id"`
	UserID      string    `json:"user_id"`
	Type        VoteType  `json:"vote_type"`
	CastAt      time.Time `json:"cast_at"`
}

// ConsensusResult is the derived vote count for one candidate.
type ConsensusResult struct {
	CandidateID  string `json:"candidate_id"`
	UpCount      int    `json:"up_count"`
	DownCount    int    `json:"down_count"`
	NeutralCount int    `json:"neutral_count"`
	Score        int    `json:"score"`
}

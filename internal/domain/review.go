package domain

import (
	"errors"
	"strings"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrAlreadyReplied = errors.New("review already has a reply")
	ErrEmptyReply     = errors.New("reply text is empty")
)

// Defaults for reviews missing optional provider fields.
const (
	AnonymousReviewer = "Anonyme"
	NoReviewComment   = "(Pas de commentaire)"
)

// Review is a customer review on a location.
type Review struct {
	ID           string `json:"id"`
	ReviewID     string `json:"review_id"` // provider key used by the reply endpoint
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"` // 1..5, 0 when the provider sent an unknown value
	Comment      string `json:"comment"`
	Date         string `json:"date"`

	// Reply goes from empty to set exactly once and never reverts.
	Reply string `json:"reply,omitempty"`
}

// HasReply reports whether the owner already answered.
func (r Review) HasReply() bool {
	return r.Reply != ""
}

var starRatings = [...]string{"ONE", "TWO", "THREE", "FOUR", "FIVE"}

// ParseStarRating converts the provider enum (ONE..FIVE) to 1..5.
// Unknown values map to 0.
func ParseStarRating(s string) int {
	for i, v := range starRatings {
		if v == s {
			return i + 1
		}
	}
	return 0
}

// ApplyReply returns a copy of reviews where the review identified by id
// carries the reply. Every other review is left untouched.
func ApplyReply(reviews []Review, id, reply string) ([]Review, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, ErrEmptyReply
	}

	out := make([]Review, len(reviews))
	copy(out, reviews)

	for i := range out {
		if out[i].ID != id {
			continue
		}
		if out[i].HasReply() {
			return nil, ErrAlreadyReplied
		}
		out[i].Reply = reply
		return out, nil
	}
	return nil, ErrReviewNotFound
}

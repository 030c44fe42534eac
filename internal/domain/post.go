package domain

import (
	"errors"
	"time"
)

// ErrEmptyPost is returned when a post has no text.
var ErrEmptyPost = errors.New("post content is empty")

// PostStatus is the lifecycle state of a local post.
type PostStatus string

const (
	PostPublished PostStatus = "PUBLISHED"
	PostScheduled PostStatus = "SCHEDULED"
)

// Defaults for local posts.
const (
	EmptyPostContent = "Post sans texte"
	DefaultTopicType = "STANDARD"
	TempPostPrefix   = "temp-"
)

// Post is a local post published on the listing.
type Post struct {
	ID            string     `json:"id"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"image_url,omitempty"`
	Status        PostStatus `json:"status"`
	CreatedAt     string     `json:"created_at"`
	ScheduledDate string     `json:"scheduled_date,omitempty"`

	// APIState mirrors the provider state (LIVE, PROCESSING, ...).
	APIState string `json:"api_state,omitempty"`
}

// NewOptimisticPost builds the local record shown right after a successful
// remote create, before any re-fetch.
func NewOptimisticPost(id, content string, now time.Time) Post {
	return Post{
		ID:        TempPostPrefix + id,
		Content:   content,
		Status:    PostPublished,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// PrependPost returns a new slice with p in front of posts.
func PrependPost(posts []Post, p Post) []Post {
	out := make([]Post, 0, len(posts)+1)
	out = append(out, p)
	return append(out, posts...)
}

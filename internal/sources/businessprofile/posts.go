package businessprofile

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/gateway"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// Fixed parts of every created post.
const (
	PostLanguageCode     = "fr"
	PostCallToActionType = "LEARN_MORE"
	PostCallToActionURL  = "https://google.com"
)

// FetchPosts lists the local posts of a location. Failures degrade to an
// empty list: the v4 posts API is often not enabled on a project.
func (c *Client) FetchPosts(ctx context.Context, locationID string) []domain.Post {
	var resp localPostsResponse
	if err := c.get(ctx, "posts.list", c.endpoints.localPostsURL(locationID), &resp); err != nil {
		c.logger.Warn("posts API failed (likely not enabled)",
			logger.String("location", locationID),
			logger.Error(err))
		return []domain.Post{}
	}

	out := make([]domain.Post, 0, len(resp.LocalPosts))
	for _, p := range resp.LocalPosts {
		out = append(out, mapLocalPost(p))
	}
	return out
}

// CreatePost publishes a post. An empty topicType means domain.DefaultTopicType.
func (c *Client) CreatePost(ctx context.Context, locationID, content, topicType string) error {
	if topicType == "" {
		topicType = domain.DefaultTopicType
	}

	req := gateway.Request{
		Operation: "posts.create",
		Method:    http.MethodPost,
		URL:       c.endpoints.localPostsURL(locationID),
		Body: createPostRequest{
			LanguageCode: PostLanguageCode,
			Summary:      content,
			TopicType:    topicType,
			CallToAction: callToAction{
				ActionType: PostCallToActionType,
				URL:        PostCallToActionURL,
			},
		},
	}
	if err := c.api.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

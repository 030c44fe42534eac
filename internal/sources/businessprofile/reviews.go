package businessprofile

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/gateway"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// FetchReviews lists the reviews of a location. Failures degrade to an empty list.
func (c *Client) FetchReviews(ctx context.Context, locationID string) []domain.Review {
	var resp reviewsResponse
	if err := c.get(ctx, "reviews.list", c.endpoints.reviewsURL(locationID), &resp); err != nil {
		c.logger.Error("error fetching reviews",
			logger.String("location", locationID),
			logger.Error(err))
		return []domain.Review{}
	}

	out := make([]domain.Review, 0, len(resp.Reviews))
	for _, r := range resp.Reviews {
		out = append(out, mapReview(r))
	}
	return out
}

// ReplyToReview publishes the owner reply. The error is returned as is so the
// caller can show the provider status and body.
func (c *Client) ReplyToReview(ctx context.Context, locationID, reviewID, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyReply
	}

	req := gateway.Request{
		Operation: "reviews.reply",
		Method:    http.MethodPut,
		URL:       c.endpoints.replyURL(locationID, reviewID),
		Body:      replyRequest{Comment: text},
	}
	if err := c.api.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("failed to reply to review %s: %w", reviewID, err)
	}
	return nil
}

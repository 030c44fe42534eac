package businessprofile

import (
	"strings"

	"github.com/MrSnakeDoc/storefront/internal/domain"
)

// mapLocation converts a provider location to a domain.Business.
func mapLocation(loc location) domain.Business {
	return domain.Business{
		ID:       loc.Name,
		Name:     loc.Title,
		Address:  formatAddress(loc.StorefrontAddress),
		Category: primaryCategory(loc.Categories),
		LogoURL:  domain.PlaceholderLogo,
	}
}

// formatAddress joins the address lines and the locality into one display line.
// Example: ["12 rue de la Paix", "Bât. B"] + "Paris" -> "12 rue de la Paix, Bât. B, Paris"
func formatAddress(a *postalAddress) string {
	if a == nil {
		return domain.UnknownAddress
	}

	parts := make([]string, 0, len(a.AddressLines)+1)
	for _, line := range a.AddressLines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	if l := strings.TrimSpace(a.Locality); l != "" {
		parts = append(parts, l)
	}

	if len(parts) == 0 {
		return domain.UnknownAddress
	}
	return strings.Join(parts, ", ")
}

func primaryCategory(c *categories) string {
	if c == nil || c.PrimaryCategory == nil || c.PrimaryCategory.DisplayName == "" {
		return domain.UnknownCategory
	}
	return c.PrimaryCategory.DisplayName
}

func mapReview(r review) domain.Review {
	out := domain.Review{
		ID:           r.ReviewID,
		ReviewID:     r.ReviewID,
		ReviewerName: domain.AnonymousReviewer,
		Rating:       domain.ParseStarRating(r.StarRating),
		Comment:      r.Comment,
		Date:         r.CreateTime,
	}
	if r.Reviewer != nil && r.Reviewer.DisplayName != "" {
		out.ReviewerName = r.Reviewer.DisplayName
	}
	if out.Comment == "" {
		out.Comment = domain.NoReviewComment
	}
	if r.ReviewReply != nil {
		out.Reply = r.ReviewReply.Comment
	}
	return out
}

func mapLocalPost(p localPost) domain.Post {
	out := domain.Post{
		ID:        p.Name,
		Content:   p.Summary,
		Status:    domain.PostPublished,
		CreatedAt: p.CreateTime,
		APIState:  p.State,
	}
	if out.Content == "" && p.CallToAction != nil {
		out.Content = p.CallToAction.ActionType
	}
	if out.Content == "" {
		out.Content = domain.EmptyPostContent
	}
	if len(p.Media) > 0 {
		out.ImageURL = p.Media[0].GoogleURL
	}
	return out
}

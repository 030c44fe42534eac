package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
)

type businessesResponse struct {
	Businesses []domain.Business `json:"businesses"`
	Count      int               `json:"count"`
}

// Businesses runs the discovery walk and returns every location found.
func Businesses(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Dashboard.ReloadBusinesses(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, businessesResponse{Businesses: list, Count: len(list)})
	}
}

func location(r *http.Request) string {
	return r.URL.Query().Get("location")
}

// Overview returns stats, summary, reviews and posts of one location.
func Overview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := d.Dashboard.Overview(r.Context(), location(r))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, ov)
	}
}

func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Dashboard.Stats(r.Context(), location(r))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func Reviews(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := d.Dashboard.Reviews(r.Context(), location(r))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, reviews)
	}
}

func Posts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := d.Dashboard.Posts(r.Context(), location(r))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

type replyRequest struct {
	Location string `json:"location"`
	ReviewID string `json:"review_id"`
	Text     string `json:"text"`
}

// ReplyToReview publishes an owner reply and returns the updated review.
func ReplyToReview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}
		review, err := d.Dashboard.ReplyToReview(r.Context(), req.Location, req.ReviewID, req.Text)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}

type postRequest struct {
	Location  string `json:"location"`
	Content   string `json:"content"`
	TopicType string `json:"topic_type,omitempty"`
}

// CreatePost publishes a local post and returns its optimistic copy.
func CreatePost(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}
		post, err := d.Dashboard.CreatePost(r.Context(), req.Location, req.Content, req.TopicType)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/infra/integration/facebook"
)

type PostsSource interface {
	LatestPosts(ctx context.Context) ([]facebook.Post, error)
}

type FacebookHandler struct {
	Source PostsSource
	Log    *zap.Logger
}

func NewFacebookHandler(posts PostsSource, log *zap.Logger) *FacebookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FacebookHandler{Source: posts, Log: log}
}

type PostsResponse struct {
	Posts   []facebook.Post `json:"posts"`
	Success bool            `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Posts always answers 200; the gallery falls back to static content when
// the list is empty.
func (h *FacebookHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Source.LatestPosts(r.Context())
	switch {
	case errors.Is(err, facebook.ErrNoAccessToken):
		writeJSON(w, http.StatusOK, PostsResponse{Posts: []facebook.Post{}, Error: "No access token configured"})
	case err != nil:
		h.Log.Error("facebook posts fetch failed", zap.Error(err))
		writeJSON(w, http.StatusOK, PostsResponse{Posts: []facebook.Post{}, Error: "Failed to fetch posts"})
	default:
		writeJSON(w, http.StatusOK, PostsResponse{Posts: posts, Success: true})
	}
}

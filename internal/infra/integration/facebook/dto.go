package facebook

import "time"

type Post struct {
	ID           string `json:"id"`
	Message      string `json:"message,omitempty"`
	FullPicture  string `json:"full_picture,omitempty"`
	CreatedTime  string `json:"created_time"`
	PermalinkURL string `json:"permalink_url"`
}

type postsResponse struct {
	Data  []Post      `json:"data"`
	Error *graphError `json:"error,omitempty"`
}

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type cachedPosts struct {
	posts     []Post
	fetchedAt time.Time
}

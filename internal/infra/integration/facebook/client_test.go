package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphServer(t *testing.T, hits *int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/61575613031791/posts", r.URL.Path)
		assert.Equal(t, "token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, postFields, r.URL.Query().Get("fields"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const feed = `{"data":[
	{"id":"1","message":"no pic","created_time":"2025-01-07T10:00:00+0000","permalink_url":"u1"},
	{"id":"2","full_picture":"p2","created_time":"2025-01-06T10:00:00+0000","permalink_url":"u2"},
	{"id":"3","full_picture":"p3","created_time":"2025-01-05T10:00:00+0000","permalink_url":"u3"},
	{"id":"4","full_picture":"p4","created_time":"2025-01-04T10:00:00+0000","permalink_url":"u4"},
	{"id":"5","full_picture":"p5","created_time":"2025-01-03T10:00:00+0000","permalink_url":"u5"},
	{"id":"6","full_picture":"p6","created_time":"2025-01-02T10:00:00+0000","permalink_url":"u6"},
	{"id":"7","full_picture":"p7","created_time":"2025-01-01T10:00:00+0000","permalink_url":"u7"}
]}`

func TestLatestPosts_FiltersAndCaches(t *testing.T) {
	var hits int32
	srv := graphServer(t, &hits, http.StatusOK, feed)
	c := NewClient("token", "61575613031791", srv.URL)
	now := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	posts, err := c.LatestPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, MaxPosts)
	assert.Equal(t, "2", posts[0].ID)
	assert.Equal(t, "6", posts[4].ID)

	_, err = c.LatestPosts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	now = now.Add(CacheTTL + time.Second)
	_, err = c.LatestPosts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestLatestPosts_NoToken(t *testing.T) {
	c := NewClient("", "61575613031791", "http://127.0.0.1:0")
	_, err := c.LatestPosts(context.Background())
	assert.ErrorIs(t, err, ErrNoAccessToken)
}

func TestLatestPosts_UpstreamError(t *testing.T) {
	var hits int32
	srv := graphServer(t, &hits, http.StatusBadRequest, `{"error":{"message":"Invalid OAuth access token.","code":190}}`)
	c := NewClient("token", "61575613031791", srv.URL)

	_, err := c.LatestPosts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	// failures are not cached
	_, err = c.LatestPosts(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestLatestPosts_EmptyFeed(t *testing.T) {
	var hits int32
	srv := graphServer(t, &hits, http.StatusOK, `{"data":[]}`)
	c := NewClient("token", "61575613031791", srv.URL)

	posts, err := c.LatestPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestRefresh_BypassesCache(t *testing.T) {
	var hits int32
	srv := graphServer(t, &hits, http.StatusOK, feed)
	c := NewClient("token", "61575613031791", srv.URL)

	_, err := c.LatestPosts(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Refresh(context.Background()))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))

	_, err = c.LatestPosts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))

	assert.ErrorIs(t, NewClient("", "1", srv.URL).Refresh(context.Background()), ErrNoAccessToken)
}

func TestLatestPosts_ErrorOmitsAccessToken(t *testing.T) {
	c := NewClient("SECRET-TOKEN-123", "page", "http://127.0.0.1:1")

	_, err := c.LatestPosts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facebook request")
	assert.NotContains(t, err.Error(), "SECRET-TOKEN-123")

	bad := NewClient("SECRET-TOKEN-123", "page", "http://[::1")
	_, err = bad.LatestPosts(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN-123")
}

func TestLatestPosts_CanceledCallerDoesNotFailSharedFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		fmt.Fprint(w, feed)
	}))
	t.Cleanup(srv.Close)
	c := NewClient("token", "61575613031791", srv.URL)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.LatestPosts(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		posts []Post
		err   error
	}
	second := make(chan result, 1)
	go func() {
		posts, err := c.LatestPosts(context.Background())
		second <- result{posts, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.posts, MaxPosts)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

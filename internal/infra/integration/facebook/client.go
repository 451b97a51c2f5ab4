package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cablecom/leads-api/internal/infra/metrics"
)

const (
	DefaultBaseURL = "https://graph.facebook.com/v18.0"
	CacheTTL       = time.Hour
	MaxPosts       = 5
	fetchLimit     = 10
	fetchTimeout   = 10 * time.Second
	postFields     = "id,message,full_picture,created_time,permalink_url"
)

var ErrNoAccessToken = errors.New("facebook access token not configured")

// Client reads the page feed from the Graph API. Results are cached for
// CacheTTL and concurrent misses share one upstream request.
type Client struct {
	baseURL     string
	pageID      string
	accessToken string
	http        *http.Client
	ttl         time.Duration
	now         func() time.Time

	mu    sync.RWMutex
	cache *cachedPosts
	group singleflight.Group
}

func NewClient(accessToken, pageID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		pageID:      pageID,
		accessToken: accessToken,
		http:        &http.Client{Timeout: fetchTimeout},
		ttl:         CacheTTL,
		now:         time.Now,
	}
}

// LatestPosts returns up to MaxPosts posts that carry a picture.
func (c *Client) LatestPosts(ctx context.Context) ([]Post, error) {
	if c.accessToken == "" {
		return nil, ErrNoAccessToken
	}

	c.mu.RLock()
	cached := c.cache
	c.mu.RUnlock()
	if cached != nil && c.now().Sub(cached.fetchedAt) < c.ttl {
		metrics.RecordFacebookFetch(metrics.OutcomeCached)
		return cached.posts, nil
	}

	return c.load(ctx)
}

// Refresh fetches the feed regardless of cache age and replaces the cache on
// success. A failed refresh keeps the previous entry.
func (c *Client) Refresh(ctx context.Context) error {
	if c.accessToken == "" {
		return ErrNoAccessToken
	}
	_, err := c.load(ctx)
	return err
}

// load runs one shared upstream fetch. The fetch is detached from the
// caller that started it so a disconnecting visitor does not fail the others
// waiting on the same result.
func (c *Client) load(ctx context.Context) ([]Post, error) {
	ch := c.group.DoChan("posts", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		posts, err := c.fetch(fctx)
		if err != nil {
			metrics.RecordFacebookFetch(metrics.OutcomeFailure)
			return nil, err
		}
		metrics.RecordFacebookFetch(metrics.OutcomeSuccess)

		c.mu.Lock()
		c.cache = &cachedPosts{posts: posts, fetchedAt: c.now()}
		c.mu.Unlock()
		return posts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Post), nil
	}
}

func (c *Client) fetch(ctx context.Context) ([]Post, error) {
	q := url.Values{}
	q.Set("fields", postFields)
	q.Set("limit", fmt.Sprint(fetchLimit))
	q.Set("access_token", c.accessToken)
	endpoint := fmt.Sprintf("%s/%s/posts?%s", c.baseURL, url.PathEscape(c.pageID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build facebook request: %w", withoutURL(err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook request: %w", withoutURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("facebook posts (status %d): %s", resp.StatusCode, body)
	}

	var out postsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode facebook posts: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("facebook api: %s", out.Error.Message)
	}

	return withPictures(out.Data, MaxPosts), nil
}

// withoutURL unwraps a *url.Error, whose text carries the request URL and
// with it the access token.
func withoutURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func withPictures(posts []Post, max int) []Post {
	res := make([]Post, 0, max)
	for _, p := range posts {
		if p.FullPicture == "" {
			continue
		}
		res = append(res, p)
		if len(res) == max {
			break
		}
	}
	return res
}

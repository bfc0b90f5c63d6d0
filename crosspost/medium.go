// Package crosspost publishes copies of blog posts to Medium, pointing back at
// the original through the canonical URL.
package crosspost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Medium API root.
const DefaultBaseURL = "https://api.medium.com/v1"

// maxTags is the number of tags Medium accepts per post.
const maxTags = 5

// ErrUnauthorized is returned when Medium rejects the integration token.
var ErrUnauthorized = errors.New("crosspost: medium rejected the token")

// Article is the payload of a Medium post.
type Article struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	CanonicalURL  string   `json:"canonicalUrl,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PublishStatus string   `json:"publishStatus,omitempty"`
	License       string   `json:"license,omitempty"`
}

// Created is what Medium returns for a new post.
type Created struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// User is the authenticated Medium account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Client talks to the Medium API with an integration token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/me", nil, &u)
	return u, err
}

// CreatePost publishes a under authorID. Tags beyond the first five are dropped.
func (c *Client) CreatePost(ctx context.Context, authorID string, a Article) (Created, error) {
	if a.ContentFormat == "" {
		a.ContentFormat = "html"
	}
	if len(a.Tags) > maxTags {
		a.Tags = a.Tags[:maxTags]
	}
	var out Created
	err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(authorID)+"/posts", a, &out)
	return out, err
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crosspost: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	respBody := io.LimitReader(resp.Body, 1<<20)
	if resp.StatusCode >= 300 {
		msg := resp.Status
		var env envelope
		if isJSON(resp.Header.Get("Content-Type")) && json.NewDecoder(respBody).Decode(&env) == nil && len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return fmt.Errorf("crosspost: %s %s: %d: %s", method, path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(respBody).Decode(&env); err != nil {
		return fmt.Errorf("crosspost: %s %s: decode response: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("crosspost: %s %s: response has no data", method, path)
	}
	return json.Unmarshal(env.Data, out)
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

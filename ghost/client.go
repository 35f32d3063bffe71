package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/upb/creatorhub/config"
)

// ErrNoPost is returned when Ghost answers a create call without a post
var ErrNoPost = errors.New("ghost returned no post")

// Client talks to the Ghost Members, Admin and Content APIs
type Client struct {
	baseURL    string
	membersURL string
	adminKey   string
	contentKey string
	httpClient *http.Client
}

// NewClient creates a Ghost client. Timeout bounds every single request.
func NewClient(cfg config.GhostConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.URL,
		membersURL: cfg.MembersAPIURL,
		adminKey:   cfg.AdminAPIKey,
		contentKey: cfg.ContentAPIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateSession authenticates a member with email and password
func (c *Client) CreateSession(ctx context.Context, email, password string) (*Member, string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, c.membersURL+"/session", nil, body, &resp); err != nil {
		return nil, "", err
	}
	if resp.Member.ID == "" {
		return nil, "", &APIError{StatusCode: http.StatusBadGateway, Message: "ghost session response has no member"}
	}
	return &resp.Member, resp.Token, nil
}

// GetMember fetches a member by id. A missing member yields nil, nil.
func (c *Client) GetMember(ctx context.Context, id string) (*Member, error) {
	var resp memberResponse
	err := c.do(ctx, http.MethodGet, c.membersURL+"/members/"+url.PathEscape(id), nil, nil, &resp)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Member, nil
}

// FindAuthorByEmail looks up a staff author. A missing author yields nil, nil.
func (c *Client) FindAuthorByEmail(ctx context.Context, email string) (*Author, error) {
	query := url.Values{"filter": {"email:" + email}}
	var resp authorsEnvelope
	err := c.do(ctx, http.MethodGet, c.adminURL("authors/"), query, nil, &resp)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Authors) == 0 {
		return nil, nil
	}
	return &resp.Authors[0], nil
}

// CreateAuthor creates a staff author
func (c *Client) CreateAuthor(ctx context.Context, name, email, slug string) (*Author, error) {
	author := Author{Name: name, Email: email, Slug: slug}
	var resp authorsEnvelope
	if err := c.do(ctx, http.MethodPost, c.adminURL("authors/"), nil, authorsEnvelope{Authors: []Author{author}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Authors) == 0 {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "ghost returned no author"}
	}
	return &resp.Authors[0], nil
}

// CreatePost publishes a post through the Admin API
func (c *Client) CreatePost(ctx context.Context, post NewPost) (Post, error) {
	var resp postsEnvelope
	if err := c.do(ctx, http.MethodPost, c.adminURL("posts/"), nil, newPostsEnvelope{Posts: []NewPost{post}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Posts) == 0 {
		return nil, ErrNoPost
	}
	return resp.Posts[0], nil
}

// ListPosts reads published posts from the Content API
func (c *Client) ListPosts(ctx context.Context, q PostQuery) (*PostPage, error) {
	query := url.Values{"key": {c.contentKey}}
	if q.Filter != "" {
		query.Set("filter", q.Filter)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}

	var page PostPage
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/ghost/api/content/posts/", query, nil, &page); err != nil {
		return nil, err
	}
	if page.Posts == nil {
		page.Posts = []Post{}
	}
	if len(page.Meta) == 0 {
		page.Meta = json.RawMessage(`{}`)
	}
	return &page, nil
}

func (c *Client) adminURL(resource string) string {
	return c.baseURL + "/ghost/api/admin/" + resource
}

func (c *Client) isAdmin(endpoint string) bool {
	return strings.HasPrefix(endpoint, c.adminURL(""))
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal ghost request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create ghost request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.isAdmin(endpoint) {
		req.Header.Set("Authorization", "Ghost "+c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ghost request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read ghost response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody, resp.Status)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode ghost response: %w", err)
	}
	return nil
}

func errorMessage(body []byte, fallback string) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if len(env.Errors) > 0 && env.Errors[0].Message != "" {
			return env.Errors[0].Message
		}
	}
	return fallback
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

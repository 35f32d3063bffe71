package ghost

import (
	"encoding/json"
	"fmt"
)

// Member is a Ghost member as returned by the Members API
type Member struct {
	ID    string `json:"id"`
	UUID  string `json:"uuid,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Author is a Ghost staff author
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Slug  string `json:"slug"`
}

// Tag references a post tag by name
type Tag struct {
	Name string `json:"name"`
}

// AuthorRef references an author by id
type AuthorRef struct {
	ID string `json:"id"`
}

// NewPost is the payload for creating a post through the Admin API
type NewPost struct {
	Title       string      `json:"title"`
	HTML        string      `json:"html"`
	Excerpt     string      `json:"excerpt,omitempty"`
	PublishedAt string      `json:"published_at,omitempty"`
	Tags        []Tag       `json:"tags"`
	Authors     []AuthorRef `json:"authors"`
}

// Post is kept as raw JSON so callers receive Ghost's full representation
type Post = json.RawMessage

// PostQuery selects posts from the Content API
type PostQuery struct {
	Filter string
	Limit  int
	Page   int
}

// PostPage is one page of Content API posts
type PostPage struct {
	Posts []Post          `json:"posts"`
	Meta  json.RawMessage `json:"meta"`
}

// APIError is a non-2xx response from Ghost
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ghost api error (status %d): %s", e.StatusCode, e.Message)
}

type sessionResponse struct {
	Member Member `json:"member"`
	Token  string `json:"token"`
}

type memberResponse struct {
	Member *Member `json:"member"`
}

type authorsEnvelope struct {
	Authors []Author `json:"authors"`
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

type newPostsEnvelope struct {
	Posts []NewPost `json:"posts"`
}

type errorEnvelope struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

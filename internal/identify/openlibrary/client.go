package openlibrary

import (
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
)

// Record is the lookup result consumed by the resolver. Absent fields stay
// empty; the resolver treats every field as opportunistic.
type Record struct {
	Title       string
	Author      string
	Narrator    string
	Series      string
	SeriesPart  string
	Year        string
	Description string
	CoverURL    string
	Genres      []string
}

// Searcher defines the lookup operation the resolver depends on.
type Searcher interface {
	Search(ctx context.Context, title, author string) (*Record, error)
}

// Client queries the Open Library search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an Open Library client.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("openlibrary base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int64    `json:"cover_i"`
	Subject          []string `json:"subject"`
	FirstSentence    []string `json:"first_sentence"`
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

// Search queries by title and author. A miss returns (nil, nil).
func (c *Client) Search(ctx context.Context, title, author string) (*Record, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return nil, errors.New("title and author required")
	}

	query := url.Values{}
	query.Set("title", title)
	query.Set("author", author)
	query.Set("limit", "5")
	endpoint := fmt.Sprintf("%s/search.json?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lookup status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if len(payload.Docs) == 0 {
		return nil, nil
	}

	doc := payload.Docs[0]
	record := &Record{
		Title:  strings.TrimSpace(doc.Title),
		Genres: normalizeSubjects(doc.Subject),
	}
	if len(doc.AuthorName) > 0 {
		record.Author = strings.TrimSpace(doc.AuthorName[0])
	}
	if doc.FirstPublishYear > 0 {
		record.Year = strconv.Itoa(doc.FirstPublishYear)
	}
	if doc.CoverID > 0 {
		record.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverID)
	}
	if len(doc.FirstSentence) > 0 {
		record.Description = strings.TrimSpace(doc.FirstSentence[0])
	}
	return record, nil
}

// normalizeSubjects keeps a handful of subjects usable as genres.
func normalizeSubjects(subjects []string) []string {
	out := make([]string, 0, 5)
	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		out = append(out, subject)
		if len(out) == 5 {
			break
		}
	}
	return out
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
)

const (
	defaultUserAgent = "lazyload/1.0 (https://github.com/pders01/lazyload)"
	defaultTimeout   = 30 * time.Second
	contactsPath     = "/api/contacts"
)

// PageResponse is the body of the combined contacts endpoint.
type PageResponse struct {
	Items []storage.Contact `json:"items"`
	Total int               `json:"total"`
}

// Server pages a remote contacts endpoint. The total arrives with every
// page, so no separate count request is made.
type Server struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

func NewServer(endpoint, userAgent string, timeout time.Duration) *Server {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Server{
		client:    &http.Client{Timeout: timeout},
		endpoint:  strings.TrimRight(endpoint, "/"),
		userAgent: userAgent,
	}
}

func (s *Server) Mode() paging.Mode { return paging.ModeOffset }

func (s *Server) Fetch(ctx context.Context, page paging.Page) (paging.Result[storage.Contact], error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(page.Offset))
	q.Set("limit", strconv.Itoa(page.Limit))
	if page.Filter != "" {
		q.Set("search", page.Filter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+contactsPath+"?"+q.Encode(), nil)
	if err != nil {
		return paging.Result[storage.Contact]{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return paging.Result[storage.Contact]{}, fmt.Errorf("fetching contacts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return paging.Result[storage.Contact]{}, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	var body PageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return paging.Result[storage.Contact]{}, fmt.Errorf("decoding contacts: %w", err)
	}
	return paging.Result[storage.Contact]{Items: body.Items, Total: body.Total}, nil
}

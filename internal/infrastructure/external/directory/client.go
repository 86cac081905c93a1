package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-actions/pkg/config"
)

// User is one directory entry as returned by the user search API
type User struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	PrincipalName string `json:"userPrincipalName"`
	Mail          string `json:"mail"`
}

type listResponse struct {
	Value []User `json:"value"`
}

// Finder is the lookup capability the identity resolver consumes
type Finder interface {
	FindExact(ctx context.Context, displayName string) ([]User, error)
	FindByPrefix(ctx context.Context, prefix string) ([]User, error)
	Search(ctx context.Context, term string) ([]User, error)
	SupportsSearch() bool
}

// Client queries a Microsoft-Graph-style directory user API
type Client struct {
	baseURL       string
	accessToken   string
	enableSearch  bool
	maxCandidates int
	client        *http.Client
}

// NewClient creates a directory client from config
func NewClient(cfg *config.DirectoryConfig) *Client {
	base := "https://graph.microsoft.com"
	enableSearch := true
	maxCandidates := 5
	var token string
	if cfg != nil {
		if cfg.BaseURL != "" {
			base = cfg.BaseURL
		}
		token = cfg.AccessToken
		enableSearch = cfg.EnableSearch
		if cfg.MaxCandidates > 0 {
			maxCandidates = cfg.MaxCandidates
		}
	}
	return &Client{
		baseURL:       base,
		accessToken:   token,
		enableSearch:  enableSearch,
		maxCandidates: maxCandidates,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// SupportsSearch reports whether fuzzy $search lookups are enabled
func (c *Client) SupportsSearch() bool {
	return c.enableSearch
}

// FindExact looks up users whose display name equals the given name
func (c *Client) FindExact(ctx context.Context, displayName string) ([]User, error) {
	filter := fmt.Sprintf("displayName eq '%s'", escapeQuotes(displayName))
	return c.listUsers(ctx, url.Values{"$filter": {filter}}, false)
}

// FindByPrefix looks up users whose display name starts with the prefix
func (c *Client) FindByPrefix(ctx context.Context, prefix string) ([]User, error) {
	filter := fmt.Sprintf("startswith(displayName,'%s')", escapeQuotes(prefix))
	return c.listUsers(ctx, url.Values{"$filter": {filter}}, false)
}

// Search performs a fuzzy relevance search on display names. Requires the
// eventual-consistency header on Graph-style backends.
func (c *Client) Search(ctx context.Context, term string) ([]User, error) {
	search := fmt.Sprintf(`"displayName:%s"`, escapeQuotes(term))
	return c.listUsers(ctx, url.Values{"$search": {search}}, true)
}

func (c *Client) listUsers(ctx context.Context, query url.Values, eventual bool) ([]User, error) {
	query.Set("$select", "id,displayName,userPrincipalName,mail")
	query.Set("$top", fmt.Sprintf("%d", c.maxCandidates))

	endpoint := c.baseURL + "/v1.0/users?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if eventual {
		req.Header.Set("ConsistencyLevel", "eventual")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Value, nil
}

// escapeQuotes doubles single quotes per OData literal rules
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

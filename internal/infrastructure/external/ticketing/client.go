package ticketing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/johnquangdev/meeting-actions/pkg/config"
)

// WorkItem is the minimal creation response from the ticketing backend
type WorkItem struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}

// CanonicalURL prefers the human-facing link over the API resource URL
func (w *WorkItem) CanonicalURL() string {
	if w.Links.HTML.Href != "" {
		return w.Links.HTML.Href
	}
	return w.URL
}

// patchOp is one JSON patch operation over a work item field
type patchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// Creator is the creation capability the delivery orchestrator consumes
type Creator interface {
	CreateWorkItem(ctx context.Context, workItemType string, fields map[string]interface{}) (*WorkItem, error)
}

// Client creates work items through an Azure-DevOps-style JSON patch API
type Client struct {
	baseURL string
	project string
	token   string
	client  *http.Client
}

// NewClient creates a ticketing client from config
func NewClient(cfg *config.TicketingConfig) *Client {
	var base, project, token string
	if cfg != nil {
		base = cfg.BaseURL
		project = cfg.Project
		token = cfg.PersonalToken
	}
	return &Client{
		baseURL: base,
		project: project,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateWorkItem creates one work item of the given native type. Fields are
// keyed by backend field reference name (System.Title and friends); each
// becomes one add operation in the patch document.
func (c *Client) CreateWorkItem(ctx context.Context, workItemType string, fields map[string]interface{}) (*WorkItem, error) {
	ops := make([]patchOp, 0, len(fields))
	// Stable order keeps request bodies reproducible in tests
	for _, key := range fieldOrder {
		if value, ok := fields[key]; ok {
			ops = append(ops, patchOp{Op: "add", Path: "/fields/" + key, Value: value})
		}
	}
	for key, value := range fields {
		if !isOrderedField(key) {
			ops = append(ops, patchOp{Op: "add", Path: "/fields/" + key, Value: value})
		}
	}

	b, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/_apis/wit/workitems/$%s?api-version=7.1",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(workItemType))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+c.token)))
	req.Header.Set("Content-Type", "application/json-patch+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ticketing backend returned status %d", resp.StatusCode)
	}

	var item WorkItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// fieldOrder fixes the patch position of the common fields; anything else
// is appended afterwards in map order.
var fieldOrder = []string{
	"System.Title",
	"System.Description",
	"Microsoft.VSTS.Common.Priority",
	"System.Tags",
	"System.AssignedTo",
	"System.AreaPath",
	"System.IterationPath",
	"Microsoft.VSTS.Scheduling.TargetDate",
}

func isOrderedField(key string) bool {
	for _, k := range fieldOrder {
		if k == key {
			return true
		}
	}
	return false
}

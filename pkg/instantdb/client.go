package instantdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL      = "https://api.instantdb.com"
	placeholderAppID    = "your-instantdb-app-id-here"
	defaultPollInterval = 5 * time.Second
)

// Record is a single document as returned by the query endpoint. The "id"
// field is always present; everything else is the stored value.
type Record map[string]interface{}

// Ack is the opaque acknowledgment body returned by the mutation endpoint.
type Ack map[string]interface{}

// Op is one operation inside a mutation request.
type Op struct {
	Op        string                 `json:"op"`
	Namespace string                 `json:"ns"`
	ID        string                 `json:"id"`
	Value     map[string]interface{} `json:"value,omitempty"`
}

// UpdateOp builds a create-or-replace operation for the given record.
func UpdateOp(namespace, id string, value map[string]interface{}) Op {
	return Op{Op: "update", Namespace: namespace, ID: id, Value: value}
}

// DeleteOp builds a delete operation for the given record.
func DeleteOp(namespace, id string) Op {
	return Op{Op: "delete", Namespace: namespace, ID: id}
}

// NewID generates a globally-unique record identifier client-side.
func NewID() string {
	return uuid.New().String()
}

// Client is a thin client for the InstantDB runtime REST API. A single Client
// is created at process start and shared by all operations.
type Client struct {
	appID        string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewClient creates a client for the given app ID. A missing or placeholder
// app ID returns ErrNotConfigured so callers can distinguish "cannot
// initialize" from "initialized but request failed".
func NewClient(appID string) (*Client, error) {
	if appID == "" || appID == placeholderAppID {
		return nil, ErrNotConfigured
	}
	return &Client{
		appID:        appID,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: defaultPollInterval,
	}, nil
}

// post sends an authenticated JSON request and decodes the response body.
func (c *Client) post(ctx context.Context, op, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.appID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &StoreError{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StoreError{Op: op, Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &StoreError{Op: op, Status: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &StoreError{Op: op, Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
		}
	}
	return nil
}

// Transact commits an ordered list of operations as a single mutation.
func (c *Client) Transact(ctx context.Context, ops []Op) (Ack, error) {
	payload := map[string]interface{}{
		"app-id": c.appID,
		"ops":    ops,
	}

	var ack Ack
	if err := c.post(ctx, "mutation", "/runtime/mutation", payload, &ack); err != nil {
		return nil, err
	}
	return ack, nil
}

// Query returns the current full set of records in the namespace.
func (c *Client) Query(ctx context.Context, namespace string) ([]Record, error) {
	payload := map[string]interface{}{
		"app-id": c.appID,
		"query": map[string]interface{}{
			namespace: map[string]interface{}{},
		},
	}

	var result map[string][]Record
	if err := c.post(ctx, "query", "/runtime/query", payload, &result); err != nil {
		return nil, err
	}

	records := result[namespace]
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Delete removes a record by identifier. Deleting an id that does not exist
// is not an error at this level.
func (c *Client) Delete(ctx context.Context, namespace, id string) (Ack, error) {
	return c.Transact(ctx, []Op{DeleteOp(namespace, id)})
}

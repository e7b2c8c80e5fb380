// Package agentflow provides a small Go client for the AgentFlow Chain
// REST API.
package agentflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the AgentFlow Chain REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// ChatRequest is the payload for a synchronous orchestration call.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// PlanStep mirrors one step of the synthesized execution plan.
type PlanStep struct {
	Tool       string         `json:"tool"`
	Reason     string         `json:"reason,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	DependsOn  []string       `json:"dependsOn,omitempty"`
}

// ToolCall is the executable expansion of a plan step.
type ToolCall struct {
	Tool       string         `json:"tool"`
	NextTool   string         `json:"next_tool,omitempty"`
	Parameters map[string]any `json:"parameters"`
	Reason     string         `json:"reason,omitempty"`
}

// StepResult reports the outcome of one executed step.
type StepResult struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChatResponse is the full orchestration result.
type ChatResponse struct {
	Analysis      string       `json:"analysis"`
	IsOffTopic    bool         `json:"is_off_topic"`
	RequiresTools bool         `json:"requires_tools"`
	ExecutionType string       `json:"execution_type"`
	Steps         []PlanStep   `json:"steps"`
	MissingInfo   []string     `json:"missing_info"`
	Complexity    string       `json:"complexity"`
	ToolCalls     []ToolCall   `json:"tool_calls"`
	Results       []StepResult `json:"results,omitempty"`
}

// JobSubmission represents the payload required to create an async job.
type JobSubmission struct {
	ID             string         `json:"id,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Message        string         `json:"message"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Job contains the state of an asynchronous orchestration job.
type Job struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Message        string         `json:"message"`
	Status         string         `json:"status"`
	Attempts       int            `json:"attempts"`
	MaxRetries     int            `json:"max_retries"`
	LastError      string         `json:"last_error,omitempty"`
	ErrorCode      string         `json:"error_code,omitempty"`
	Result         *ChatResponse  `json:"result,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      int64          `json:"created_at"`
	UpdatedAt      int64          `json:"updated_at"`
}

// ToolParameter describes one input of a registered tool.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Tool describes a registered tool.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters,omitempty"`
	Examples    []string        `json:"examples,omitempty"`
}

// APIError represents server side validation or internal errors.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("agentflow api error (%d): %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("agentflow api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the AgentFlow Chain API. When httpClient
// is nil, a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) *Client {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("invalid base url: %v", err))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}
}

// Chat performs a synchronous orchestration request.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, "/api/v1/chat", req, &resp); err != nil {
		return ChatResponse{}, err
	}
	return resp, nil
}

// SubmitJob creates a new asynchronous job.
func (c *Client) SubmitJob(ctx context.Context, submission JobSubmission) (Job, error) {
	var j Job
	if err := c.post(ctx, "/api/v1/jobs", submission, &j); err != nil {
		return Job{}, err
	}
	return j, nil
}

// GetJob fetches job state by identifier.
func (c *Client) GetJob(ctx context.Context, jobID string) (Job, error) {
	var j Job
	endpoint := fmt.Sprintf("/api/v1/jobs?id=%s", url.QueryEscape(jobID))
	if err := c.get(ctx, endpoint, &j); err != nil {
		return Job{}, err
	}
	return j, nil
}

// Tools lists the registered tool catalog.
func (c *Client) Tools(ctx context.Context) ([]Tool, error) {
	var payload struct {
		Tools []Tool `json:"tools"`
	}
	if err := c.get(ctx, "/api/v1/tools", &payload); err != nil {
		return nil, err
	}
	return payload.Tools, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	rel := &url.URL{Path: path.Join(c.baseURL.Path, parsed.Path), RawQuery: parsed.RawQuery}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr APIError
		apiErr.StatusCode = resp.StatusCode
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &struct {
				Error *APIError `json:"error"`
			}{Error: &apiErr}); err != nil {
				// try direct decode into apiErr if server returned flat payload
				_ = json.Unmarshal(data, &apiErr)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

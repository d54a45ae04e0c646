package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Clarifai API
const DefaultBaseURL = "https://api.clarifai.com"

// statusSuccess is the Clarifai status code for a successful call
const statusSuccess = 10000

// RemoteGenerationError is returned when the completion service fails or is unreachable
type RemoteGenerationError struct {
	HTTPStatus  int    // 0 when the service was not reached
	Code        int    // service status code, 0 when unknown
	Description string // service-reported description
	Err         error  // transport or decoding cause
}

func (e *RemoteGenerationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("completion service error: %s: %v", e.Description, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("completion service error: %s (code %d, status %d)", e.Description, e.Code, e.HTTPStatus)
	default:
		return fmt.Sprintf("completion service error: %s (status %d)", e.Description, e.HTTPStatus)
	}
}

func (e *RemoteGenerationError) Unwrap() error {
	return e.Err
}

// Config for the completion client
type Config struct {
	BaseURL        string // defaults to DefaultBaseURL
	PAT            string // personal access token
	UserID         string
	AppID          string
	ModelID        string
	ModelVersionID string        // optional; latest version when empty
	Timeout        time.Duration // zero keeps the transport default (none)
	HTTPClient     *http.Client  // optional, overrides Timeout
}

// Client is a Clarifai text-completion client
type Client struct {
	endpoint   string
	pat        string
	httpClient *http.Client
	logger     *slog.Logger
}

type outputsRequest struct {
	Inputs []input `json:"inputs"`
}

type input struct {
	Data data `json:"data"`
}

type data struct {
	Text text `json:"text"`
}

type text struct {
	Raw string `json:"raw"`
}

type apiStatus struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}

type outputsResponse struct {
	Status  apiStatus `json:"status"`
	Outputs []struct {
		Status apiStatus `json:"status"`
		Data   data      `json:"data"`
	} `json:"outputs"`
}

// NewClient creates a completion client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.PAT) == "" {
		return nil, fmt.Errorf("completion: personal access token is required")
	}
	if cfg.UserID == "" || cfg.AppID == "" || cfg.ModelID == "" {
		return nil, fmt.Errorf("completion: user, app and model ids are required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	endpoint := fmt.Sprintf("%s/v2/users/%s/apps/%s/models/%s",
		baseURL, url.PathEscape(cfg.UserID), url.PathEscape(cfg.AppID), url.PathEscape(cfg.ModelID))
	if cfg.ModelVersionID != "" {
		endpoint += "/versions/" + url.PathEscape(cfg.ModelVersionID)
	}
	endpoint += "/outputs"

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		endpoint:   endpoint,
		pat:        cfg.PAT,
		httpClient: httpClient,
		logger:     logger.With("component", "completion_client", "model", cfg.ModelID),
	}, nil
}

// Complete sends prompt as a single-shot completion and returns the generated text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(outputsRequest{
		Inputs: []input{{Data: data{Text: text{Raw: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.pat)

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &RemoteGenerationError{Description: "service unreachable", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteGenerationError{HTTPStatus: resp.StatusCode, Description: "failed to read response", Err: err}
	}

	c.logger.Debug("completion call finished",
		"status", resp.StatusCode,
		"prompt_chars", len(prompt),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	var apiResp outputsResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		description := strings.TrimSpace(string(respBody))
		if decodeErr == nil && apiResp.Status.Description != "" {
			description = describe(apiResp.Status)
		}
		if description == "" {
			description = http.StatusText(resp.StatusCode)
		}
		return "", &RemoteGenerationError{
			HTTPStatus:  resp.StatusCode,
			Code:        apiResp.Status.Code,
			Description: description,
		}
	}

	if decodeErr != nil {
		return "", &RemoteGenerationError{HTTPStatus: resp.StatusCode, Description: "failed to parse response", Err: decodeErr}
	}

	if apiResp.Status.Code != statusSuccess {
		return "", &RemoteGenerationError{
			HTTPStatus:  resp.StatusCode,
			Code:        apiResp.Status.Code,
			Description: describe(apiResp.Status),
		}
	}

	if len(apiResp.Outputs) == 0 {
		return "", &RemoteGenerationError{HTTPStatus: resp.StatusCode, Code: apiResp.Status.Code, Description: "empty response from API"}
	}

	output := apiResp.Outputs[0]
	if output.Status.Code != 0 && output.Status.Code != statusSuccess {
		return "", &RemoteGenerationError{
			HTTPStatus:  resp.StatusCode,
			Code:        output.Status.Code,
			Description: describe(output.Status),
		}
	}

	return output.Data.Text.Raw, nil
}

func describe(s apiStatus) string {
	description := s.Description
	if description == "" {
		description = "unknown error"
	}
	if s.Details != "" {
		description += ": " + s.Details
	}
	return description
}

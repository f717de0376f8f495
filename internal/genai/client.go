// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai issues timed, cancellable calls to the external generation
// service. Implements: prd003-generation (R1-R5);
//
//	docs/ARCHITECTURE § Generation Client.
//
// The core only depends on "submit text, receive text or a typed failure";
// the service's own identity and versioning are out of scope. Every call
// is classified as complete, truncated-with-text (soft success), empty
// (hard failure), or rejected.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// generateAPIURL is the generation service endpoint. Package-level var for
// test substitution.
var generateAPIURL = "https://generation.internal/v1/generate"

// TruncationNotice is appended to partial text when the output-length cap
// was hit. Downstream prompts and the UI surface it explicitly.
const TruncationNotice = "[NOTICE: output truncated at the configured length cap]"

// Backend issues a single generation call. The HTTP client implements it;
// tests supply a mock. Per Strategy pattern (prd003-generation R5.2).
type Backend interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Request holds one generation call's parameters.
type Request struct {
	// Input is the rendered prompt text.
	Input string

	// Search enables the service's live external-search capability.
	// Discovery calls set it; cleanup calls must not, since cleanup is a
	// pure transformation of already-supplied text.
	Search bool

	// MaxOutputTokens caps the output length. Zero uses the config default.
	MaxOutputTokens int
}

// Result is a classified successful (or soft-successful) call.
type Result struct {
	// Text is the extracted output text, with TruncationNotice appended
	// when Truncated.
	Text string

	// Truncated reports that the output-length cap was hit but partial
	// text was returned.
	Truncated bool
}

// Client calls the generation service over HTTP.
type Client struct {
	cfg    types.GenerationConfig
	client *http.Client
}

// NewClient returns a Client for the configured generation service.
func NewClient(cfg types.GenerationConfig) *Client {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Minute
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.Effort == "" {
		cfg.Effort = types.EffortMedium
	}
	// Generation calls are bounded by the per-call context deadline, so
	// the http.Client carries no timeout of its own.
	return &Client{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// wireRequest is the request body for the generation service.
type wireRequest struct {
	Model     string       `json:"model"`
	Effort    types.Effort `json:"effort,omitempty"`
	Search    bool         `json:"search,omitempty"`
	MaxTokens int          `json:"max_tokens"`
	Input     string       `json:"input"`
}

// wireError is the failure payload in a non-success response.
type wireError struct {
	Message string `json:"message"`
}

// wireResponse is the response body. Text may appear as a single field or
// as an ordered list of content segments; Status is "complete",
// "max_tokens", or "error".
type wireResponse struct {
	Text    string            `json:"text,omitempty"`
	Content []json.RawMessage `json:"content,omitempty"`
	Status  string            `json:"status"`
	Reason  string            `json:"reason,omitempty"`
	Error   *wireError        `json:"error,omitempty"`
}

// Generate submits req under the hard wall-clock deadline. On timeout the
// in-flight call is aborted and a GenerationTimeoutError returned; a
// non-success status becomes GenerationRejectedError with the service's
// message verbatim when present; a success with no extractable text
// becomes EmptyOutputError.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxOutputTokens
	}

	body, err := json.Marshal(wireRequest{
		Model:     c.cfg.Model,
		Effort:    c.cfg.Effort,
		Search:    req.Search,
		MaxTokens: maxTokens,
		Input:     req.Input,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, generateAPIURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, httpReq, c.cfg.MaxRetries)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, &types.GenerationTimeoutError{Elapsed: c.cfg.CallTimeout}
		}
		return Result{}, fmt.Errorf("calling generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, rejection(resp.Body)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Result{}, fmt.Errorf("decoding generation response: %w", err)
	}

	return Classify(wire)
}

// rejection turns a non-success HTTP response into a
// GenerationRejectedError, surfacing the service's message verbatim when
// one can be read.
func rejection(body io.Reader) error {
	data, _ := io.ReadAll(io.LimitReader(body, 1<<16))

	var wire wireResponse
	if err := json.Unmarshal(data, &wire); err == nil && wire.Error != nil && wire.Error.Message != "" {
		return &types.GenerationRejectedError{Message: wire.Error.Message}
	}
	return &types.GenerationRejectedError{}
}

// Classify maps a decoded response onto the call outcome taxonomy:
// complete, truncated-with-text, empty, or rejected.
func Classify(wire wireResponse) (Result, error) {
	if wire.Status == "error" {
		msg := wire.Reason
		if wire.Error != nil && wire.Error.Message != "" {
			msg = wire.Error.Message
		}
		return Result{}, &types.GenerationRejectedError{Message: msg}
	}

	text := ExtractText(wire)
	if text == "" {
		return Result{}, &types.EmptyOutputError{}
	}

	if wire.Status == "max_tokens" {
		return Result{
			Text:      text + "\n\n" + TruncationNotice,
			Truncated: true,
		}, nil
	}

	return Result{Text: text}, nil
}

package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"salesdash/internal/constants"
	pkgerrors "salesdash/pkg/errors"
)

type GeminiConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

const reasonMissingKey = "missing_key"

var errMissingKey = pkgerrors.ErrAuth.WithMessage(MessageMissingKey).WithDetail("reason", reasonMissingKey)

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	cfg    GeminiConfig
	client *http.Client
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = constants.DefaultSummaryEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultSummaryModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultSummaryTimeout
	}

	return &GeminiClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) HasKey() bool {
	return c.cfg.APIKey != ""
}

func (c *GeminiClient) Summarize(ctx context.Context, items []Item) (string, error) {
	if !c.HasKey() {
		return "", errMissingKey
	}

	prompt, err := BuildPrompt(items)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(fmt.Errorf("failed to create request: %w", err), pkgerrors.ErrInternal)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(fmt.Errorf("summary request failed: %w", err), pkgerrors.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", pkgerrors.ErrAuth.
			WithMessage("summary credentials rejected").
			WithDetail("status", resp.StatusCode)
	}

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", pkgerrors.ErrUpstream.
			WithMessage(fmt.Sprintf("summary api returned status: %d", resp.StatusCode)).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(snippet))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", pkgerrors.Wrap(fmt.Errorf("failed to decode response: %w", err), pkgerrors.ErrUpstream)
	}

	if len(decoded.Candidates) == 0 {
		return "", pkgerrors.ErrUpstream.WithMessage("summary api returned no candidates")
	}

	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

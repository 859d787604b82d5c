// Package llm talks to the Gemini generateContent endpoint. The gateway is
// stateless: every call carries the full turn sequence and the credentials
// resolved for that call, so a key or model change in settings takes effect
// on the very next turn.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/prompt"
)

const (
	// DefaultBaseURL is the production Gemini API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
	// DefaultModel is used when settings carry no model override.
	DefaultModel = "gemini-1.5-flash"

	roleUser  = "user"
	roleModel = "model"
)

// Part holds one text fragment of a content entry.
type Part struct {
	Text string `json:"text"`
}

// Content is one role-tagged entry in the generateContent payload.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role"`
}

// GenerationConfig tunes the sampling parameters for a call.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// SafetySetting is one category threshold in the request's safety policy.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings"`
}

// Fixed safety policy sent with every call; not user-tunable.
var safetySettings = []SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ModelConfig carries the per-call credentials and model choice. It is read
// from settings on every turn rather than cached at startup.
type ModelConfig struct {
	APIKey string
	Model  string
}

// Gateway issues generateContent calls over plain HTTP.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
}

// NewGateway returns a gateway against the given API root. An empty baseURL
// falls back to the production endpoint.
func NewGateway(baseURL string) *Gateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Gateway{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Generate sends the turn sequence and returns the model's text reply.
//
// Failures are classified through the domain sentinels: ErrNotConfigured when
// no API key is set (checked before any network traffic), ErrTransport when
// the request never got a response, ErrProvider when the endpoint answered
// with an error, and ErrEmptyGeneration when a 200 response carried no usable
// text.
func (g *Gateway) Generate(ctx context.Context, turns []prompt.Turn, cfg ModelConfig) (string, error) {
	if cfg.APIKey == "" {
		return "", domain.ErrNotConfigured
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	payload := generateRequest{
		Contents: make([]Content, 0, len(turns)),
		GenerationConfig: GenerationConfig{
			Temperature:     0.7,
			TopP:            0.9,
			MaxOutputTokens: 2048,
		},
		SafetySettings: safetySettings,
	}
	for _, t := range turns {
		payload.Contents = append(payload.Contents, Content{
			Parts: []Part{{Text: t.Text}},
			Role:  wireRole(t.Role),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", cfg.APIKey)

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	if res.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(resBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", domain.ErrProvider, apiErr.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", domain.ErrProvider, res.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(resBody, &out); err != nil {
		return "", fmt.Errorf("%w: malformed response body", domain.ErrProvider)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrEmptyGeneration
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyGeneration
	}
	return text, nil
}

// wireRole maps transcript roles onto the provider's role names. Gemini calls
// the assistant side "model".
func wireRole(r domain.Role) string {
	if r == domain.RoleAssistant {
		return roleModel
	}
	return roleUser
}

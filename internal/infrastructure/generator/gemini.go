// Package generator produces chapter breakdowns from transcripts by calling
// an LLM provider. The Gemini implementation talks to Google's
// OpenAI-compatible chat completions endpoint.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hszk-dev/chapterize/internal/domain/model"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
)

const (
	// Gemini provides an OpenAI-compatible endpoint.
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

	defaultModel = "gemini-2.0-flash"
)

// systemPrompt instructs the model to answer with a bare JSON array so the
// response can be parsed strictly. Any deviation is treated as a failure,
// never returned to the caller as-is.
const systemPrompt = `You segment video transcripts into chapters. ` +
	`Respond with a JSON array only, no prose and no code fences. ` +
	`Each element must be an object with fields: ` +
	`"start" (number, seconds), "end" (number, seconds), ` +
	`"significance" (one of "very_significant", "significant", "insignificant", "out_of_topic"), ` +
	`"chapter" (short title), "summary" (one or two sentences). ` +
	`Chapters must be ordered by start time and cover the whole transcript.`

// ClientConfig holds configuration for the Gemini generator.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements repository.ChapterGenerator against Gemini.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewClient creates a new Gemini-backed chapter generator.
// Call timeouts are the caller's responsibility via context.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = defaultModel
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   chatModel,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the transcript to the model and parses the returned
// chapter list. All failure modes wrap repository.ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, transcript string) ([]model.Chapter, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: transcript},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", repository.ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", repository.ErrGenerationFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", repository.ErrGenerationFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", repository.ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d: %s", repository.ErrGenerationFailed, resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", repository.ErrGenerationFailed, err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contains no choices", repository.ErrGenerationFailed)
	}

	return parseChapters(chatResp.Choices[0].Message.Content)
}

// parseChapters decodes the model output into a validated chapter list.
// Models occasionally wrap JSON in a markdown fence despite instructions,
// so fences are stripped before decoding. Anything else that is not a
// well-formed chapter array is rejected.
func parseChapters(content string) ([]model.Chapter, error) {
	content = stripCodeFence(content)

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var chapters []model.Chapter
	if err := dec.Decode(&chapters); err != nil {
		return nil, fmt.Errorf("%w: malformed chapter output: %v", repository.ErrGenerationFailed, err)
	}

	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: empty chapter list", repository.ErrGenerationFailed)
	}

	for i, ch := range chapters {
		if err := ch.Validate(); err != nil {
			return nil, fmt.Errorf("%w: chapter %d: %v", repository.ErrGenerationFailed, i, err)
		}
	}

	return chapters, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Compile-time verification that Client implements repository.ChapterGenerator.
var _ repository.ChapterGenerator = (*Client)(nil)

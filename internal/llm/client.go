package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// Defaults for the Gemini REST client.
const (
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// DefaultBaseURL is the Gemini REST endpoint prefix.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// defaultRequestTimeout bounds one generation round trip. Vision
	// requests with several images can take tens of seconds.
	defaultRequestTimeout = 60 * time.Second

	// errorBodyLimit caps how much of an API error body lands in the
	// returned error.
	errorBodyLimit = 512
)

// Client is the generative capability every agent depends on.
type Client interface {
	// GenerateText sends a text-only prompt and returns the raw
	// response text.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateFromImages sends a prompt together with one or more
	// images and returns the raw response text.
	GenerateFromImages(ctx context.Context, prompt string, images []Image) (string, error)

	// ModelName returns the configured model identifier.
	ModelName() string
}

// GenerationCache stores raw model responses keyed by request digest.
// Implementations must be safe for concurrent use. A miss is (_, false,
// nil); errors are reserved for storage failures.
type GenerationCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, response string) error
}

// GeminiClient talks to the Gemini REST API. All methods are safe for
// concurrent use; the usage tracker serializes its own counters.
type GeminiClient struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracker    *UsageTracker
	cache      GenerationCache
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithModel overrides the default generation model.
func WithModel(name string) GeminiOption {
	return func(c *GeminiClient) {
		if name != "" {
			c.modelName = name
		}
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger for request and usage lines.
func WithLogger(logger *slog.Logger) GeminiOption {
	return func(c *GeminiClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCache attaches a generation cache. Hits skip the API entirely and
// do not touch the usage counters.
func WithCache(cache GenerationCache) GeminiOption {
	return func(c *GeminiClient) {
		c.cache = cache
	}
}

// NewGeminiClient creates a client for the given API key.
func NewGeminiClient(apiKey string, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		apiKey:     apiKey,
		modelName:  DefaultModel,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     slog.Default(),
		tracker:    NewUsageTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelName returns the configured model identifier.
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// Usage returns a consistent copy of the cumulative API usage.
func (c *GeminiClient) Usage() model.Usage {
	return c.tracker.Snapshot()
}

// GenerateText sends a text-only prompt.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "text", []requestPart{{Text: prompt}})
}

// GenerateFromImages sends a prompt with inline image data.
func (c *GeminiClient) GenerateFromImages(ctx context.Context, prompt string, images []Image) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	parts := make([]requestPart, 0, len(images)+1)
	parts = append(parts, requestPart{Text: prompt})
	for _, img := range images {
		parts = append(parts, requestPart{
			InlineData: &inlineData{
				MIMEType: img.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	return c.generate(ctx, "vision", parts)
}

// Wire types for the generateContent endpoint. Request fields use the
// snake_case accepted by the REST API; response fields arrive in
// camelCase.
type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates    []responseCandidate `json:"candidates"`
	UsageMetadata *usageMetadata      `json:"usageMetadata"`
}

type responseCandidate struct {
	Content responseContent `json:"content"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
}

type responsePart struct {
	Text string `json:"text"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// generate performs one generateContent round trip, consulting the
// cache first when one is attached.
func (c *GeminiClient) generate(ctx context.Context, kind string, parts []requestPart) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var key string
	if c.cache != nil {
		key = c.requestKey(payload)
		if text, ok, err := c.cache.Get(ctx, key); err != nil {
			c.logger.Warn("generation cache read failed", "error", err)
		} else if ok {
			c.logger.Debug("generation cache hit", "kind", kind, "key", key[:12])
			return text, nil
		}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send %s request: %w", kind, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing to do about close errors

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit)) //nolint:errcheck // snippet is best effort
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := responseText(decoded)
	if text == "" {
		return "", ErrEmptyResponse
	}

	promptTokens, completionTokens := 0, 0
	if decoded.UsageMetadata != nil {
		promptTokens = decoded.UsageMetadata.PromptTokenCount
		completionTokens = decoded.UsageMetadata.CandidatesTokenCount
	}
	call := c.tracker.Record(promptTokens, completionTokens)

	c.logger.Debug("generation complete",
		"call", call,
		"kind", kind,
		"model", c.modelName,
		"prompt_tokens", promptTokens,
		"completion_tokens", completionTokens,
		"elapsed", time.Since(start).Round(10*time.Millisecond),
	)

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, text); err != nil {
			c.logger.Warn("generation cache write failed", "error", err)
		}
	}

	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// requestKey derives a stable cache key from the model name and the
// marshaled request body, which covers prompts and inline image bytes.
func (c *GeminiClient) requestKey(payload []byte) string {
	h := sha3.New256()
	h.Write([]byte(c.modelName)) //nolint:errcheck // hash writes never fail
	h.Write([]byte{0})           //nolint:errcheck // hash writes never fail
	h.Write(payload)             //nolint:errcheck // hash writes never fail
	return hex.EncodeToString(h.Sum(nil))
}

// Ensure GeminiClient implements Client.
var _ Client = (*GeminiClient)(nil)

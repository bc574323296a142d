package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/healthrec/engine/internal/telemetry/metrics"
	"github.com/healthrec/engine/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	oneHour             = 60 * 60
	responseCacheExpire = oneHour * 1 // generated text expire in seconds
	maxCompletionTokens = 500

	systemPrompt = "You are a friendly health advisor. Keep answers short, " +
		"concrete and easy to understand."
)

var ErrNoCompletion = errors.New("assistant returned no completion")

// Api is a client for an OpenAI-compatible chat completions endpoint.
// Generated text is cached in-process, prompts for the same user and
// purpose repeat a lot within an hour.
type Api struct {
	cache          *freecache.Cache
	apiUrl         string // e.g. https://api.openai.com/v1
	apiKey         string
	model          string
	httpClient     *http.Client
	metricsManager *metrics.Manager
}

func NewApi(
	apiUrl, apiKey, model string,
	httpClient *http.Client,
	metricsManager *metrics.Manager,
) *Api {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &Api{
		cache:          freecache.NewCache(cacheSize),
		apiUrl:         apiUrl,
		apiKey:         apiKey,
		model:          model,
		httpClient:     httpClient,
		metricsManager: metricsManager,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate runs one chat completion. An empty cacheKey skips the cache
// on both ends, for prompts that must stay fresh.
func (a *Api) Generate(ctx context.Context, cacheKey, prompt string) (text string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistantApi.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cacheKey != "" {
		if cachedBytes, err := a.cache.Get([]byte(cacheKey)); err == nil {
			log.Tracef("assistant response for [%s] found in cache", cacheKey)
			a.metricsManager.CounterAssistantCacheHits.Inc()
			return string(cachedBytes), nil
		}
	}

	reqBytes, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxCompletionTokens: maxCompletionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, "POST",
		a.apiUrl+"/chat/completions",
		bytes.NewReader(reqBytes),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read assistant response bytes: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal assistant response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if chatResp.Error != nil {
			return "", fmt.Errorf("assistant api [%d]: %s", resp.StatusCode, chatResp.Error.Message)
		}
		return "", fmt.Errorf("assistant api: unexpected status %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	text = strings.TrimSpace(chatResp.Choices[0].Message.Content)

	if cacheKey != "" {
		if err := a.cache.Set([]byte(cacheKey), []byte(text), responseCacheExpire); err != nil {
			log.Errorf("failed to write assistant cache for [%s]: %s", cacheKey, err)
		}
	}

	return text, nil
}

// StatusOK probes the completions endpoint with a throwaway prompt.
func (a *Api) StatusOK(ctx context.Context) bool {
	if _, err := a.Generate(ctx, "", "Test"); err != nil {
		log.Errorf("assistant status check: %s", err)
		return false
	}
	return true
}

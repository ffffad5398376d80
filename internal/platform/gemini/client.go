package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

const (
	// EmbeddingDim is the fixed output dimensionality requested from the
	// embedding model. Stored vectors and pgvector columns must agree on it.
	EmbeddingDim = 1536

	// maxInputChars bounds each input before it is sent to the API.
	maxInputChars = 8000

	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

type Client interface {
	Embed(ctx context.Context, inputs []string, taskType string) ([][]float32, error)
	Model() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	embedModel string
	httpClient *http.Client

	maxRetries int
}

func New(log *logger.Logger) (Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	baseURL := os.Getenv("GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	embedModel := os.Getenv("GEMINI_EMBED_MODEL")
	if embedModel == "" {
		embedModel = "gemini-embedding-001"
	}

	timeoutSec := 30
	if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("GEMINI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &client{
		log:        log.With("service", "GeminiClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

func (c *client) Model() string { return c.embedModel }

type geminiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *geminiHTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *geminiHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	half := base / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func (c *client) doOnce(ctx context.Context, path string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *client) do(ctx context.Context, path string, body any, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := c.doOnce(ctx, path, body)
		if err == nil {
			return json.Unmarshal(data, out)
		}
		lastErr = err
		if !isRetryableErr(err) {
			return err
		}
		backoff := time.Duration(1<<uint(attempt)) * 500 * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitterSleep(backoff)):
		}
	}
	return lastErr
}

type embedContentRequest struct {
	Model                string       `json:"model"`
	Content              embedContent `json:"content"`
	TaskType             string       `json:"taskType,omitempty"`
	OutputDimensionality int          `json:"outputDimensionality,omitempty"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func (c *client) Embed(ctx context.Context, inputs []string, taskType string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	if taskType == "" {
		taskType = TaskRetrievalDocument
	}

	req := batchEmbedRequest{Requests: make([]embedContentRequest, 0, len(inputs))}
	for _, input := range inputs {
		if len(input) > maxInputChars {
			input = input[:maxInputChars]
		}
		req.Requests = append(req.Requests, embedContentRequest{
			Model:                "models/" + c.embedModel,
			Content:              embedContent{Parts: []embedPart{{Text: input}}},
			TaskType:             taskType,
			OutputDimensionality: EmbeddingDim,
		})
	}

	var resp batchEmbedResponse
	path := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", c.embedModel)
	if err := c.do(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(resp.Embeddings))
	}

	out := make([][]float32, len(inputs))
	for i, e := range resp.Embeddings {
		if len(e.Values) != EmbeddingDim {
			return nil, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(e.Values), EmbeddingDim)
		}
		out[i] = e.Values
	}
	return out, nil
}

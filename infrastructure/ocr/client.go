// Package ocr provides text recognition backends for the OCR flows.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"cabal-assist/domain/screen"
)

// ErrUnavailable is returned while the OCR backend cannot serve requests.
var ErrUnavailable = errors.New("OCR service is currently unavailable")

// Client provides OCR recognition services.
type Client interface {
	screen.TextRecognizer

	// IsHealthy returns true if the OCR backend is available.
	IsHealthy() bool

	// Close releases resources.
	Close()
}

// TextResult contains the OCR recognition result.
type TextResult struct {
	Text       string
	Confidence float64
	ElapsedMs  float64
}

// ClientConfig contains configuration for the HTTP OCR client.
type ClientConfig struct {
	BaseURL        string
	Language       string
	Timeout        time.Duration
	HealthInterval time.Duration
	HealthTimeout  time.Duration
}

// DefaultClientConfig returns default OCR client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://localhost:8000",
		Language:       "eng",
		Timeout:        30 * time.Second,
		HealthInterval: 5 * time.Second,
		HealthTimeout:  3 * time.Second,
	}
}

// HTTPClient implements Client using HTTP calls to an OCR sidecar service.
type HTTPClient struct {
	config       *ClientConfig
	httpClient   *http.Client
	healthy      atomic.Bool
	healthCtx    context.Context
	healthCancel context.CancelFunc
	healthWg     sync.WaitGroup
}

// NewHTTPClient creates a new HTTP-based OCR client.
func NewHTTPClient(config *ClientConfig) *HTTPClient {
	if config == nil {
		config = DefaultClientConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	client := &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		healthCtx:    ctx,
		healthCancel: cancel,
	}

	// Perform initial health check
	client.performHealthCheck()

	// Start background health check loop
	client.healthWg.Add(1)
	go client.healthCheckLoop()

	return client
}

// Recognize reads the text of a PNG encoded image.
func (c *HTTPClient) Recognize(ctx context.Context, imageBytes []byte) (*TextResult, error) {
	if !c.IsHealthy() {
		return nil, ErrUnavailable
	}

	requestURL := fmt.Sprintf("%s/v1/text", c.config.BaseURL)
	if c.config.Language != "" {
		params := url.Values{}
		params.Add("lang", c.config.Language)
		requestURL = fmt.Sprintf("%s?%s", requestURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Text  string `json:"text"`
		Debug struct {
			Confidence float64 `json:"confidence"`
			ElapsedMs  float64 `json:"elapsed_ms"`
		} `json:"debug"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &TextResult{
		Text:       apiResp.Text,
		Confidence: apiResp.Debug.Confidence,
		ElapsedMs:  apiResp.Debug.ElapsedMs,
	}, nil
}

// ExtractText implements screen.TextRecognizer.
func (c *HTTPClient) ExtractText(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	result, err := c.Recognize(ctx, data)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// IsHealthy returns true if the OCR service is available.
func (c *HTTPClient) IsHealthy() bool {
	return c.healthy.Load()
}

// Close releases resources.
func (c *HTTPClient) Close() {
	if c.healthCancel != nil {
		c.healthCancel()
	}
	c.healthWg.Wait()
}

func (c *HTTPClient) healthCheckLoop() {
	defer c.healthWg.Done()

	ticker := time.NewTicker(c.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.healthCtx.Done():
			return
		case <-ticker.C:
			c.performHealthCheck()
		}
	}
}

func (c *HTTPClient) performHealthCheck() {
	ctx, cancel := context.WithTimeout(c.healthCtx, c.config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.config.BaseURL), nil)
	if err != nil {
		c.healthy.Store(false)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.healthy.Store(false)
		return
	}
	defer resp.Body.Close()

	c.healthy.Store(resp.StatusCode == http.StatusOK)
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// NoOpClient is a no-operation OCR client for testing or when OCR is disabled.
type NoOpClient struct{}

// NewNoOpClient creates a no-operation OCR client.
func NewNoOpClient() *NoOpClient {
	return &NoOpClient{}
}

func (c *NoOpClient) ExtractText(ctx context.Context, img image.Image) (string, error) {
	return "", fmt.Errorf("OCR is disabled")
}

func (c *NoOpClient) IsHealthy() bool {
	return false
}

func (c *NoOpClient) Close() {}

var _ Client = (*NoOpClient)(nil)

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to recognize")
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

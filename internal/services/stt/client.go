package stt

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gotranscribe/internal/config"
	"gotranscribe/internal/services"
	"gotranscribe/internal/transcript"
)

const (
	defaultHTTPTimeout    = 300 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	defaultRetryBaseDelay = 2 * time.Second
	defaultRetryAttempts  = 3
	defaultBaseURL        = "https://api.groq.com/openai/v1"
	defaultModel          = "whisper-large-v3"
	transcriptionsPath    = "audio/transcriptions"
	stage                 = "transcribe"
)

// Config captures the runtime settings required to talk to the endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	ResponseFormat string
	TimeoutSeconds int
}

// ConfigFrom builds a client configuration from the [transcription] section.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:         cfg.Transcription.APIKey,
		BaseURL:        cfg.Transcription.BaseURL,
		Model:          cfg.Transcription.Model,
		Language:       cfg.Transcription.Language,
		ResponseFormat: cfg.Transcription.ResponseFormat,
		TimeoutSeconds: cfg.Transcription.TimeoutSeconds,
	}
}

// Client uploads audio and returns parsed transcripts.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default attempt count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			Language:       strings.TrimSpace(cfg.Language),
			ResponseFormat: strings.TrimSpace(cfg.ResponseFormat),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.ResponseFormat == "" {
		client.cfg.ResponseFormat = "verbose_json"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Request describes one transcription.
type Request struct {
	// AudioPath is the file uploaded as the "file" form field.
	AudioPath string
	// Language overrides the configured language hint when set.
	Language string
	// Model overrides the configured model when set.
	Model string
}

// httpStatusError reports a non-2xx response. Its message matches what the
// web client shows users.
type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("transcription request failed: %d %s. %s", e.StatusCode, http.StatusText(e.StatusCode), strings.TrimSpace(e.Body))
}

// StatusCode extracts the HTTP status from an error returned by Transcribe,
// or 0 when the failure happened before a response was received.
func StatusCode(err error) int {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Transcribe uploads the audio file and returns the decoded response.
func (c *Client) Transcribe(ctx context.Context, req Request) (transcript.Response, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return transcript.Response{}, services.Wrap(services.ErrConfiguration, stage, "request", "api key required", nil)
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return transcript.Response{}, services.Wrap(services.ErrValidation, stage, "request", "audio path required", nil)
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return transcript.Response{}, services.Wrap(services.ErrValidation, stage, "request", "audio file unavailable", err)
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.sendOnce(ctx, req)
		if err == nil {
			resp, decodeErr := transcript.DecodeResponse(body)
			if decodeErr != nil {
				return transcript.Response{}, services.Wrap(services.ErrExternalTool, stage, "decode", "", decodeErr)
			}
			return resp, nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return transcript.Response{}, classify(err, attempt)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return transcript.Response{}, services.Wrap(services.ErrTimeout, stage, "retry", "", err)
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return transcript.Response{}, services.Wrap(services.ErrTransient, stage, "request", fmt.Sprintf("failed after %d attempts", attempts), lastErr)
}

func classify(err error, attempt int) error {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, stage, "request", "check transcription.api_key", err)
		case statusErr.StatusCode == http.StatusRequestEntityTooLarge,
			statusErr.StatusCode == http.StatusBadRequest,
			statusErr.StatusCode == http.StatusUnprocessableEntity:
			return services.Wrap(services.ErrValidation, stage, "request", "", err)
		case statusErr.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrConfiguration, stage, "request", "check transcription.base_url and model", err)
		case statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, stage, "request", fmt.Sprintf("failed after %d attempts", attempt), err)
		}
		return services.Wrap(services.ErrExternalTool, stage, "request", "", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return services.Wrap(services.ErrTimeout, stage, "request", "", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if isConnectionFailure(err) {
		return services.Wrap(services.ErrTransient, stage, "request", fmt.Sprintf("failed after %d attempts", attempt), err)
	}
	return services.Wrap(services.ErrExternalTool, stage, "request", "", err)
}

func (c *Client) sendOnce(ctx context.Context, req Request) ([]byte, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, transcriptionsPath)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	payload, contentType, err := c.buildForm(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()

	reader, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body (timeout=%s): %w", c.timeoutDuration(), err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	return body, nil
}

func (c *Client) buildForm(req Request) (*bytes.Buffer, string, error) {
	file, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	model := firstNonEmpty(req.Model, c.cfg.Model)
	language := firstNonEmpty(req.Language, c.cfg.Language)
	fields := [][2]string{
		{"model", model},
		{"response_format", c.cfg.ResponseFormat},
	}
	if language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	if c.cfg.ResponseFormat == "verbose_json" {
		fields = append(fields, [2]string{"timestamp_granularities[]", "segment"})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field[0], err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode gzip body: %w", err)
		}
		return reader, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	if isTimeout(err) || isConnectionFailure(err) {
		return c.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// isConnectionFailure reports dial failures and connections dropped before a
// response arrived.
func isConnectionFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if c.retryMaxDelay > 0 && delay >= c.retryMaxDelay {
			break
		}
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

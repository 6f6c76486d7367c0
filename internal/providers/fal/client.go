package fal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetstudio/internal/domain"
	"assetstudio/internal/infra"
)

const (
	DefaultBaseURL = "https://api.fal.ai/v1"
	DefaultModel   = "fal-ai/nano-banana-pro"

	defaultRequestTimeout  = 300 * time.Second
	defaultDownloadTimeout = 30 * time.Second
	defaultStatusTimeout   = 30 * time.Second

	maxErrorBody = 512
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("fal: api key is required")

// Options configures the FAL image client.
type Options struct {
	APIKey          string
	BaseURL         string
	Model           string
	HTTPClient      *http.Client
	Logger          *infra.Logger
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	StatusTimeout   time.Duration
}

// Client performs HTTP calls to one FAL model endpoint. Apart from the
// credentials and endpoint it holds no state.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	httpClient      *http.Client
	logger          *infra.Logger
	requestTimeout  time.Duration
	downloadTimeout time.Duration
	statusTimeout   time.Duration
}

type submitPayload struct {
	Prompt          string `json:"prompt"`
	NumImages       int    `json:"num_images"`
	AspectRatio     string `json:"aspect_ratio"`
	Resolution      string `json:"resolution"`
	OutputFormat    string `json:"output_format"`
	SyncMode        bool   `json:"sync_mode"`
	EnableWebSearch bool   `json:"enable_web_search"`
}

type submitResponse struct {
	RequestID   string         `json:"request_id"`
	Description string         `json:"description"`
	Images      []domain.Image `json:"images"`
}

type statusResponse struct {
	RequestID string         `json:"request_id"`
	Status    string         `json:"status"`
	Images    []domain.Image `json:"images"`
	Response  *struct {
		Images []domain.Image `json:"images"`
	} `json:"response"`
}

// NewClient constructs a client. It fails immediately when no API key is
// supplied; credentials are never resolved lazily on first use.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.Trim(strings.TrimSpace(opts.Model), "/")
	if model == "" {
		model = DefaultModel
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		apiKey:          apiKey,
		baseURL:         baseURL,
		model:           model,
		httpClient:      httpClient,
		logger:          logger,
		requestTimeout:  durationOr(opts.RequestTimeout, defaultRequestTimeout),
		downloadTimeout: durationOr(opts.DownloadTimeout, defaultDownloadTimeout),
		statusTimeout:   durationOr(opts.StatusTimeout, defaultStatusTimeout),
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Submit validates req and, when valid, performs exactly one generation call.
// Validation failures never reach the network.
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload := submitPayload{
		Prompt:          req.Prompt,
		NumImages:       req.NumImages,
		AspectRatio:     req.AspectRatio,
		Resolution:      req.Resolution,
		OutputFormat:    req.OutputFormat,
		SyncMode:        req.SyncMode,
		EnableWebSearch: req.EnableWebSearch,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fal: encode request: %w", err)
	}

	endpoint := c.requestsURL()
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	raw, err := c.do(ctx, "submit", http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.TransportError{Op: "submit", URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("request_id", decoded.RequestID).
		Int("images", len(decoded.Images)).
		Msg("fal: generation completed")
	return &domain.GenerationResult{
		RequestID:   decoded.RequestID,
		Description: decoded.Description,
		Images:      decoded.Images,
		Raw:         raw,
	}, nil
}

// RequestStatus fetches the state of an asynchronous request.
func (c *Client) RequestStatus(ctx context.Context, requestID string) (*domain.RequestStatus, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, &domain.ValidationError{Field: "request_id", Reason: "must be a non-empty string"}
	}
	endpoint := c.requestsURL() + "/" + url.PathEscape(requestID)
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	raw, err := c.do(ctx, "status", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var decoded statusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.TransportError{Op: "status", URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	images := decoded.Images
	if len(images) == 0 && decoded.Response != nil {
		images = decoded.Response.Images
	}
	id := decoded.RequestID
	if id == "" {
		id = requestID
	}
	return &domain.RequestStatus{RequestID: id, Status: decoded.Status, Images: images, Raw: raw}, nil
}

// FetchBytes downloads the content behind rawURL. Inline data URIs returned in
// sync mode are decoded locally.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, "data:") {
		data, err := decodeDataURI(rawURL)
		if err != nil {
			return nil, &domain.TransportError{Op: "download", Err: err}
		}
		return data, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &domain.TransportError{Op: "download", URL: rawURL, Err: fmt.Errorf("invalid image url")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "download", URL: rawURL, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "download", URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: "download", URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{Op: "download", URL: rawURL, StatusCode: resp.StatusCode}
	}
	return data, nil
}

func (c *Client) requestsURL() string {
	return c.baseURL + "/models/" + c.model + "/requests"
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: endpoint, Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("fal: request rejected")
		return nil, &domain.TransportError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Body: errorDetail(raw)}
	}
	return raw, nil
}

// errorDetail extracts a readable message from an error payload.
func errorDetail(raw []byte) string {
	var detail struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		switch {
		case detail.Message != "":
			return detail.Message
		case detail.Error != "":
			return detail.Error
		case detail.Detail != nil:
			if s, ok := detail.Detail.(string); ok {
				return s
			}
			if b, err := json.Marshal(detail.Detail); err == nil {
				return truncate(string(b))
			}
		}
	}
	return truncate(strings.TrimSpace(string(raw)))
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		return data, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return []byte(decoded), nil
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

// Package prediction is the boundary to the remote yield-prediction
// service. It owns the two network operations (predict, download-report)
// and decides once whether a failure is a Remote rejection or a Transport
// fault.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cropvision/internal/form"
)

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues requests against the prediction service. It performs no
// retries; resubmission is a user action that flows back through the
// workflow controller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the given service configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("prediction"),
	}
}

// Predict submits the request and decodes the structured result.
func (c *Client) Predict(ctx context.Context, req form.Request) (*Result, error) {
	body, err := c.post(ctx, "/predict", req)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, transportError("malformed prediction response", err)
	}
	return &result, nil
}

// DownloadReport fetches the PDF report for the same request fields. The
// artifact is returned opaque; callers decide where it lands.
func (c *Client) DownloadReport(ctx context.Context, req form.Request) ([]byte, error) {
	return c.post(ctx, "/download-report", req)
}

// post runs one JSON POST and classifies the outcome. A non-200 response
// with a detail field becomes a Remote error; everything else is Transport.
func (c *Client) post(ctx context.Context, path string, req form.Request) ([]byte, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	start := time.Now()

	payload := requestBody{
		District:   req.District,
		Crop:       req.Crop,
		Season:     req.Season,
		SowingDate: req.SowDate.Format(form.DateLayout),
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, transportError("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, transportError("failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("calling prediction service",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.String("district", req.District),
		zap.String("crop", req.Crop))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, transportError("request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("failed to read response", err)
	}

	c.logger.Debug("prediction service responded",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		var remote struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &remote); err == nil && remote.Detail != "" {
			return nil, remoteError(remote.Detail)
		}
		return nil, transportError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	return body, nil
}

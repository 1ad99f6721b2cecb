package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/imagegate/internal/tlsutil"
)

const maxImageBytes = 32 << 20

// httpClient 封装各变体共享的请求/响应处理.
type httpClient struct {
	name   string
	client *http.Client
	// 响应体上限，0 表示 maxImageBytes
	limit int64
}

func newHTTPClient(name string, cfg Config) httpClient {
	return httpClient{name: name, client: tlsutil.HTTPClient(cfg.timeout())}
}

func (c httpClient) maxBody() int64 {
	if c.limit > 0 {
		return c.limit
	}
	return maxImageBytes
}

// send performs req and returns the body of a 2xx response.
func (c httpClient) send(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newTransportError(c.name, err)
	}
	defer resp.Body.Close()

	limit := c.maxBody()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, newTransportError(c.name, err)
	}
	if int64(len(body)) > limit {
		return nil, &APIError{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s response exceeds %d bytes", c.name, limit),
		}
	}
	if resp.StatusCode >= 400 {
		return nil, newStatusError(c.name, resp.StatusCode, body)
	}
	return body, nil
}

// postJSON marshals in, posts it and decodes the response into out (when non-nil).
func (c httpClient) postJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", c.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newDecodeError(c.name, http.StatusOK, err)
	}
	return nil
}

// getJSON fetches url and decodes the JSON body into out.
func (c httpClient) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	body, err := c.send(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newDecodeError(c.name, http.StatusOK, err)
	}
	return nil
}

// fetchBase64 resolves an image location to base64. Data URIs are decoded in place;
// anything else is downloaded.
func (c httpClient) fetchBase64(ctx context.Context, location string) (string, error) {
	if b64, ok := stripDataURI(location); ok {
		return b64, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	body, err := c.send(req)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", &APIError{Provider: c.name, Message: fmt.Sprintf("%s returned an empty image", c.name)}
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

// stripDataURI returns the payload of a base64 data URI.
func stripDataURI(s string) (string, bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", false
	}
	idx := strings.Index(s, ";base64,")
	if idx < 0 {
		return "", false
	}
	return s[idx+len(";base64,"):], true
}

var errPollTimeout = errors.New("generation did not finish in time")

// poll calls check every interval until it reports done, fails, or attempts run out.
// Transport errors on a single poll are retried; upstream status errors are returned.
func poll(ctx context.Context, interval time.Duration, attempts int, check func(ctx context.Context) (bool, error)) error {
	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		done, err := check(ctx)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 0 && ctx.Err() == nil {
				continue
			}
			return err
		}
		if done {
			return nil
		}
	}
	return errPollTimeout
}

// parseSize splits "WxH". ok is false for malformed input.
func parseSize(size string) (width, height int, ok bool) {
	if size == "" {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(size, "%dx%d", &width, &height); err != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// aspectRatio maps a size to the coarse ratios accepted by Imagen, Luma and Replicate.
func aspectRatio(size string) string {
	w, h, ok := parseSize(size)
	switch {
	case !ok || w == h:
		return "1:1"
	case w > h:
		return "16:9"
	default:
		return "9:16"
	}
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.TrimLeft(p, "/")
	}
	return out
}

// Package httpclient is the outbound HTTP adapter for api_request nodes.
package httpclient

import (
	"context"
	"log/slog"
	"time"

	"resty.dev/v3"
)

type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http:   resty.New().SetTimeout(timeout),
		logger: logger.With("component", "httpclient"),
	}
}

// Request issues one call and hands back the status code and raw body.
// Status handling is the caller's concern; only transport failures error.
func (c *Client) Request(ctx context.Context, method, url string, headers map[string]string, body string) (int, []byte, error) {
	req := c.http.R().SetContext(ctx).SetHeaders(headers)
	if body != "" {
		req.SetBody(body)
	}

	res, err := req.Execute(method, url)
	if err != nil {
		return 0, nil, err
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", url,
		"status", res.StatusCode(),
	)
	return res.StatusCode(), res.Bytes(), nil
}

func (c *Client) Close() error {
	return c.http.Close()
}

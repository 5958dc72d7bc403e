package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
	"github.com/eleven-am/cascade/internal/xjson"
)

// APIRequest issues one HTTP call. Non-2xx responses fail the node. The
// response body is decoded as JSON when possible and kept as raw text
// otherwise.
type APIRequest struct {
	logger *slog.Logger
}

func (h *APIRequest) Type() domain.NodeType {
	return domain.NodeTypeAPIRequest
}

func (h *APIRequest) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	cfg := req.Node.Config

	url := resolver.Resolve(stringField(cfg, "url"), req.Context)
	if url == "" {
		return nil, domain.NewConfigurationError("api_request requires a url", map[string]interface{}{"node_id": req.Node.ID})
	}

	method := strings.ToUpper(stringField(cfg, "method"))
	if method == "" {
		method = "GET"
	}
	headers := stringMapField(cfg, "headers")
	body := resolver.Resolve(stringField(cfg, "body"), req.Context)

	status, respBody, err := req.Collab.HTTP.Request(ctx, method, url, headers, body)
	if err != nil {
		return nil, domain.NewExternalError(fmt.Sprintf("%s %s failed", method, url), err)
	}
	if status < 200 || status > 299 {
		return nil, domain.NewExternalError(fmt.Sprintf("%s %s returned status %d", method, url, status), nil)
	}

	var data interface{}
	if err := xjson.Unmarshal(respBody, &data); err != nil {
		data = string(respBody)
	}

	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			req.Node.ID: map[string]interface{}{"response": data},
		},
		Result: domain.NodeResult{
			Status: domain.NodeResultSuccess,
			Data:   data,
		},
	}, nil
}

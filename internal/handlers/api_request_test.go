package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIRequestDecodesJSONResponse(t *testing.T) {
	h := &APIRequest{logger: testLogger()}
	progress := &progressRecorder{}

	client := &stubHTTP{status: 200, body: []byte(`{"count": 3, "ok": true}`)}
	collab := &ports.Collaborators{HTTP: client}

	node := domain.Node{
		ID:   "api",
		Type: domain.NodeTypeAPIRequest,
		Config: map[string]interface{}{
			"url":     "https://api.example.com/widgets?day={{today}}",
			"method":  "post",
			"headers": map[string]interface{}{"Authorization": "Bearer token"},
			"body":    `{"region": "{{region}}"}`,
		},
	}
	req := newRequest(node, collab, map[string]interface{}{"region": "emea"}, progress)

	outcome, err := h.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "POST", client.lastMethod)
	assert.NotContains(t, client.lastURL, "{{today}}")
	assert.Equal(t, `{"region": "emea"}`, client.lastBody)
	assert.Equal(t, "Bearer token", client.lastHeaders["Authorization"])

	data, ok := outcome.Result.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["count"])
}

func TestAPIRequestKeepsNonJSONBodyAsText(t *testing.T) {
	h := &APIRequest{logger: testLogger()}
	progress := &progressRecorder{}

	client := &stubHTTP{status: 200, body: []byte("pong")}
	collab := &ports.Collaborators{HTTP: client}

	node := domain.Node{
		ID:     "api",
		Type:   domain.NodeTypeAPIRequest,
		Config: map[string]interface{}{"url": "https://api.example.com/ping"},
	}
	req := newRequest(node, collab, nil, progress)

	outcome, err := h.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "GET", client.lastMethod)
	assert.Equal(t, "pong", outcome.Result.Data)
}

func TestAPIRequestNon2xxFails(t *testing.T) {
	h := &APIRequest{logger: testLogger()}
	progress := &progressRecorder{}

	client := &stubHTTP{status: 503, body: []byte("unavailable")}
	collab := &ports.Collaborators{HTTP: client}

	node := domain.Node{
		ID:     "api",
		Type:   domain.NodeTypeAPIRequest,
		Config: map[string]interface{}{"url": "https://api.example.com/widgets"},
	}
	req := newRequest(node, collab, nil, progress)

	_, err := h.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsExternalError(err))
	assert.Contains(t, err.Error(), "503")
}

func TestAPIRequestTransportError(t *testing.T) {
	h := &APIRequest{logger: testLogger()}
	progress := &progressRecorder{}

	client := &stubHTTP{err: errors.New("dial tcp: connection refused")}
	collab := &ports.Collaborators{HTTP: client}

	node := domain.Node{
		ID:     "api",
		Type:   domain.NodeTypeAPIRequest,
		Config: map[string]interface{}{"url": "https://api.example.com/widgets"},
	}
	req := newRequest(node, collab, nil, progress)

	_, err := h.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsExternalError(err))
}

func TestAPIRequestMissingURL(t *testing.T) {
	h := &APIRequest{logger: testLogger()}
	progress := &progressRecorder{}

	node := domain.Node{ID: "api", Type: domain.NodeTypeAPIRequest, Config: map[string]interface{}{}}
	req := newRequest(node, &ports.Collaborators{HTTP: &stubHTTP{}}, nil, progress)

	_, err := h.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

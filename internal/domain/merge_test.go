package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeContextUpdateWins(t *testing.T) {
	current := map[string]interface{}{"dagRunId": "run-1", "keep": "yes"}
	update := map[string]interface{}{"dagRunId": "run-2"}

	require.NoError(t, MergeContext(current, update))
	assert.Equal(t, "run-2", current["dagRunId"])
	assert.Equal(t, "yes", current["keep"])
}

func TestMergeContextNestedMaps(t *testing.T) {
	current := map[string]interface{}{
		"node1": map[string]interface{}{"status": "success"},
	}
	update := map[string]interface{}{
		"node1": map[string]interface{}{"count": 5},
	}

	require.NoError(t, MergeContext(current, update))
	nested, ok := current["node1"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "success", nested["status"])
	assert.Equal(t, 5, nested["count"])
}

func TestMergeContextEmptyUpdateIsNoop(t *testing.T) {
	current := map[string]interface{}{"a": 1}
	require.NoError(t, MergeContext(current, nil))
	assert.Equal(t, map[string]interface{}{"a": 1}, current)
}

package services

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, sonic.Unmarshal([]byte(raw), &v))
	return v
}

func TestCleanForLLMFlattensEnvelope(t *testing.T) {
	in := decode(t, `{
		"success": true,
		"cached": true,
		"_date": "2025-01-01",
		"data": {"total": 42, "averageRating": 4.5}
	}`)

	assert.Equal(t, map[string]any{"total": float64(42), "averageRating": 4.5}, CleanForLLM(in, 20))
}

func TestCleanForLLMKeepsArrayData(t *testing.T) {
	in := decode(t, `{"success": true, "data": [1, 2, 3]}`)
	assert.Equal(t, map[string]any{"data": []any{float64(1), float64(2), float64(3)}}, CleanForLLM(in, 20))
}

func TestCleanForLLMTruncatesArrays(t *testing.T) {
	items := make([]any, 25)
	for i := range items {
		items[i] = float64(i)
	}

	out, ok := CleanForLLM(items, 20).([]any)
	require.True(t, ok)
	require.Len(t, out, 21)
	assert.Equal(t, float64(19), out[19])
	assert.Equal(t, "... (5 more items)", out[20])
}

func TestCleanForLLMFields(t *testing.T) {
	longID := strings.Repeat("f", 40)
	in := decode(t, `{
		"id": "`+longID+`",
		"store_id": "short",
		"order_id": "`+longID+`",
		"created_at": {"iso": "2025-08-20T10:00:00.000Z", "type": "Date"},
		"updated_at": "2025-08-21",
		"timestamp": 12,
		"error": {"code": 1},
		"empty": {},
		"nested": {"success": true},
		"owner": {"name": "Ana", "_date": "x"},
		"rating": 5
	}`)

	assert.Equal(t, map[string]any{
		"store_id":   "short",
		"created_at": "2025-08-20T10:00:00.000Z",
		"updated_at": "2025-08-21",
		"error":      map[string]any{"code": float64(1)},
		"owner":      map[string]any{"name": "Ana"},
		"rating":     float64(5),
	}, CleanForLLM(in, 20))
}

func TestCleanForLLMScalars(t *testing.T) {
	assert.Nil(t, CleanForLLM(nil, 20))
	assert.Equal(t, "plain", CleanForLLM("plain", 20))
	assert.Equal(t, true, CleanForLLM(true, 20))
}

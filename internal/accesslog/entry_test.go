package accesslog_test

import (
	"strings"
	"testing"
	"time"

	"citoyens/internal/accesslog"
	"citoyens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionFor(t *testing.T) {
	cases := []struct {
		method, path, action string
	}{
		{"GET", "/api/citoyens/1234567890123", "get_citoyen"},
		{"GET", "/api/citoyens", "list_citoyens"},
		{"GET", "/api/citoyens/", "list_citoyens"},
		{"POST", "/api/citoyens", "create_citoyen"},
		{"PUT", "/api/citoyens/abc", "update_citoyen"},
		{"DELETE", "/api/citoyens/abc", "delete_citoyen"},
		{"PATCH", "/api/citoyens/abc", "unknown_action"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.action, accesslog.ActionFor(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "success", accesslog.LevelFor(200))
	assert.Equal(t, "info", accesslog.LevelFor(304))
	assert.Equal(t, "warning", accesslog.LevelFor(404))
	assert.Equal(t, "error", accesslog.LevelFor(503))
}

func TestSanitize(t *testing.T) {
	assert.Empty(t, accesslog.Sanitize(nil))

	photo := "data:image/png;base64," + strings.Repeat("A", 200)
	out := accesslog.Sanitize([]byte(`{"nom":"Diouf","password":"hunter2","token":"abc","photo":"` + photo + `"}`))
	assert.Contains(t, out, `"password":"[REDACTED]"`)
	assert.Contains(t, out, `"token":"[REDACTED]"`)
	assert.Contains(t, out, `"nom":"Diouf"`)
	assert.Contains(t, out, photo[:100]+"...[TRUNCATED]")
	assert.NotContains(t, out, "hunter2")

	assert.Equal(t, "not json", accesslog.Sanitize([]byte("not json")))
	long := strings.Repeat("x", 2000)
	assert.True(t, strings.HasSuffix(accesslog.Sanitize([]byte(long)), "...[TRUNCATED]"))
}

func TestNewEntry(t *testing.T) {
	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := accesslog.NewEntry(accesslog.Request{
		Start:     start,
		Duration:  42 * time.Millisecond,
		Method:    "GET",
		URL:       "/api/citoyens?limit=2",
		Path:      "/api/citoyens",
		Status:    200,
		IP:        "10.0.0.1",
		UserAgent: "curl/8.0",
	})

	assert.Equal(t, int64(42), entry.ResponseTimeMs)
	assert.True(t, entry.Success)
	assert.Equal(t, "success", entry.Level)
	assert.Equal(t, "citoyens", entry.Service)
	assert.Equal(t, "list_citoyens", entry.Action)

	other := accesslog.NewEntry(accesslog.Request{Start: start, Method: "GET", URL: "/health", Path: "/health", Status: 500})
	assert.Empty(t, other.Service)
	assert.Empty(t, other.Action)
	assert.False(t, other.Success)

	assert.Equal(t, "2025-05-01T12:00:00Z - GET /api/citoyens?limit=2 - 200 - 42ms\n", accesslog.FormatLine(entry))
}

func TestEncodeDecode(t *testing.T) {
	entry := models.LogEntry{
		Timestamp:  time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Method:     "POST",
		URL:        "/api/citoyens",
		StatusCode: 201,
		Service:    "citoyens",
		Action:     "create_citoyen",
	}
	body, err := accesslog.Encode(entry)
	require.NoError(t, err)

	decoded, err := accesslog.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, entry.URL, decoded.URL)
	assert.Equal(t, entry.Action, decoded.Action)
	assert.True(t, entry.Timestamp.Equal(decoded.Timestamp))

	_, err = accesslog.Decode([]byte("{"))
	assert.Error(t, err)
}

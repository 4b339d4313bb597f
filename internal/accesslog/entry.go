// Package accesslog builds access records for completed requests and ships them
// to their sinks off the request path.
package accesslog

import (
	"fmt"
	"strings"
	"time"

	"citoyens/internal/models"

	"github.com/bytedance/sonic"
)

const (
	citizensPrefix = "/api/citoyens"
	redacted       = "[REDACTED]"
	truncated      = "...[TRUNCATED]"
	maxPhotoChars  = 100
	maxRawBody     = 1024
)

var sensitiveFields = []string{"password", "token", "secret", "key"}

// Request describes a completed HTTP exchange.
type Request struct {
	Start     time.Time
	Duration  time.Duration
	Method    string
	URL       string
	Path      string
	Status    int
	IP        string
	UserAgent string
	Body      []byte
}

// NewEntry derives the persisted log entry from a completed request.
func NewEntry(r Request) models.LogEntry {
	entry := models.LogEntry{
		Timestamp:      r.Start.UTC(),
		Method:         r.Method,
		URL:            r.URL,
		StatusCode:     r.Status,
		ResponseTimeMs: r.Duration.Milliseconds(),
		IP:             r.IP,
		UserAgent:      r.UserAgent,
		RequestBody:    Sanitize(r.Body),
		Success:        r.Status >= 200 && r.Status < 400,
		Level:          LevelFor(r.Status),
	}
	if strings.Contains(r.URL, citizensPrefix) {
		entry.Service = "citoyens"
		entry.Action = ActionFor(r.Method, r.Path)
	}
	return entry
}

// LevelFor maps a status code to a log level.
func LevelFor(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warning"
	case status >= 300:
		return "info"
	default:
		return "success"
	}
}

// ActionFor names the citizen operation addressed by method and path.
func ActionFor(method, path string) string {
	parts := strings.Split(path, "/")
	hasID := len(parts) > 3 && parts[3] != ""

	switch method {
	case "GET":
		if hasID {
			return "get_citoyen"
		}
		return "list_citoyens"
	case "POST":
		return "create_citoyen"
	case "PUT":
		return "update_citoyen"
	case "DELETE":
		return "delete_citoyen"
	default:
		return "unknown_action"
	}
}

// Sanitize returns the request body as JSON text with secrets redacted and photos truncated.
// Non-object bodies are kept verbatim up to a fixed length.
func Sanitize(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var fields map[string]interface{}
	if err := sonic.ConfigStd.Unmarshal(body, &fields); err != nil || fields == nil {
		if len(body) > maxRawBody {
			return string(body[:maxRawBody]) + truncated
		}
		return string(body)
	}

	for _, name := range sensitiveFields {
		if _, ok := fields[name]; ok {
			fields[name] = redacted
		}
	}
	if photo, ok := fields["photo"].(string); ok && len(photo) > maxPhotoChars {
		fields["photo"] = photo[:maxPhotoChars] + truncated
	}

	out, err := sonic.ConfigStd.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}

// FormatLine renders the flat-file form of an entry.
func FormatLine(e models.LogEntry) string {
	return fmt.Sprintf("%s - %s %s - %d - %dms\n",
		e.Timestamp.UTC().Format(time.RFC3339Nano), e.Method, e.URL, e.StatusCode, e.ResponseTimeMs)
}

// Encode serialises an entry for the broker.
func Encode(e models.LogEntry) ([]byte, error) {
	return sonic.Marshal(e)
}

// Decode is the inverse of Encode.
func Decode(body []byte) (models.LogEntry, error) {
	var e models.LogEntry
	if err := sonic.Unmarshal(body, &e); err != nil {
		return e, fmt.Errorf("failed to decode access log entry: %w", err)
	}
	return e, nil
}

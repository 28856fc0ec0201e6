package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultLogBodyLimit is the preview size used when config.LogBodyLimit is unset.
	DefaultLogBodyLimit = 4096
	// LogTruncationSuffix marks truncated log values.
	LogTruncationSuffix = "...[truncated]"
	// xmlSummaryThreshold is the length above which embedded XML documents are summarised.
	xmlSummaryThreshold = 512
)

var xmlRootPattern = regexp.MustCompile(`<([A-Za-z_][\w.\-]*:)?([A-Za-z_][\w.\-]*)[\s>/]`)

// SanitizePayloadForLogging returns a log safe preview of body and whether it was cut.
//
// JSON payloads are walked so that every string leaf is capped individually and
// large XML documents (xml_content, example_xml, ...) collapse to a one line summary.
// Anything else is truncated as raw bytes.
func SanitizePayloadForLogging(body []byte, limit int) ([]byte, bool) {
	if limit <= 0 {
		return body, false
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var payload any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if out, err := json.Marshal(sanitizeJSON(payload, limit)); err == nil {
				if len(out) > limit {
					return truncateWithSuffix(out, limit), true
				}
				return out, false
			}
		}
	}

	if len(body) <= limit {
		return body, false
	}
	return body[:limit], true
}

// SanitizeStringForLogging applies the per value rules of SanitizePayloadForLogging to s.
func SanitizeStringForLogging(s string, limit int) string {
	if summary, ok := summarizeXML(s); ok {
		return summary
	}
	return truncateString(s, limit)
}

func sanitizeJSON(value any, limit int) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = sanitizeJSON(inner, limit)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = sanitizeJSON(inner, limit)
		}
		return out
	case string:
		return SanitizeStringForLogging(v, limit)
	default:
		return v
	}
}

// summarizeXML replaces a large XML document with its root element name and size.
func summarizeXML(s string) (string, bool) {
	if len(s) < xmlSummaryThreshold {
		return "", false
	}

	body := strings.TrimSpace(s)
	if !strings.HasPrefix(body, "<") {
		return "", false
	}
	if strings.HasPrefix(body, "<?") {
		if end := strings.Index(body, "?>"); end >= 0 {
			body = strings.TrimSpace(body[end+2:])
		}
	}

	root := "unknown"
	if m := xmlRootPattern.FindStringSubmatch(body); m != nil {
		root = m[2]
	}
	return fmt.Sprintf("[xml root=%s len=%d]", root, len(s)), true
}

func truncateString(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	if limit <= len(LogTruncationSuffix) {
		return LogTruncationSuffix[:limit]
	}
	return value[:limit-len(LogTruncationSuffix)] + LogTruncationSuffix
}

func truncateWithSuffix(data []byte, limit int) []byte {
	return []byte(truncateString(string(data), limit))
}

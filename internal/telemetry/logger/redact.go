package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// payloadKeys name attributes that carry stored data. Their content is
// replaced by a size marker.
var payloadKeys = map[string]struct{}{
	"value":   {},
	"values":  {},
	"operand": {},
}

// Key name fragments that mark credentials.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	// slog calls ReplaceAttr for the members of groups, never for the
	// group itself.
	if IsPayloadKey(a.Key) {
		return slog.String(a.Key, PayloadMarker(a.Value.Resolve().Any()))
	}

	if a.Value.Kind() == slog.KindString && a.Value.String() != "" && IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}

	return a
}

// PayloadMarker describes v by size only.
func PayloadMarker(v any) string {
	switch p := v.(type) {
	case nil:
		return "<nil>"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(p))
	case string:
		return fmt.Sprintf("<%d bytes>", len(p))
	case [][]byte:
		return fmt.Sprintf("<%d values>", len(p))
	case []string:
		return fmt.Sprintf("<%d values>", len(p))
	default:
		return redactedValue
	}
}

// IsPayloadKey reports whether attributes named key carry stored data.
func IsPayloadKey(key string) bool {
	_, ok := payloadKeys[strings.ToLower(key)]
	return ok
}

// IsSensitiveKey checks if a key name suggests a credential.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
	// LevelFatal represents the fatal severity level name.
	LevelFatal = "FATAL"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"fatal":   LevelFatal,
}

var allowedStatus = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"skip":         "skip",
	"retry":        "retry",
	"rate_limited": "rate_limited",
	"cancelled":    "cancelled",
}

var allowedOutcome = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"cancelled":    "cancelled",
	"rate_limited": "rate_limited",
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return "", false
	}
	if mapped, ok := allowedStatus[status]; ok {
		return mapped, true
	}
	return status, false
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	if outcome == "" {
		return "", false
	}
	val, ok := allowedOutcome[outcome]
	return val, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"state",
	"cb_key",
	"action",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"listing_id",
	"listing_status",
	"policy",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
	"rate_limited",
}

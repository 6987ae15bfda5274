package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	RedactedMarker    = "[REDACTED]"
	TruncatedMarker   = "...[TRUNCATED]"
	DepthMarker       = "[MAX_DEPTH_EXCEEDED]"
	binaryMarkerFmt   = "[BINARY_DATA: %d bytes]"
	maxRedactDepth    = 10
	maxStringLength   = 1000
	maxBinaryLength   = 5000
	unserializableFmt = "[UNSERIALIZABLE: %T]"
)

var sensitiveKeys = map[string]struct{}{
	"password": {}, "passwd": {}, "pwd": {},
	"token": {}, "access_token": {}, "refresh_token": {}, "session_token": {},
	"secret": {}, "client_secret": {},
	"credential": {}, "credentials": {},
	"private_key": {}, "privatekey": {},
	"api_key": {}, "apikey": {},
	"authorization": {}, "auth": {}, "cookie": {},
	"pin": {}, "cvv": {}, "ssn": {},
	"mnemonic": {}, "seed": {}, "seed_phrase": {},
}

var binaryKeyHints = []string{
	"image", "avatar", "screenshot", "thumbnail", "blob",
	"binary", "base64", "data_url", "file_content", "buffer",
}

// IsSensitiveKey reports whether values under key are always redacted.
// Matching is exact on the lowercase key, with '-' treated as '_'.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if _, ok := sensitiveKeys[k]; ok {
		return true
	}
	_, ok := sensitiveKeys[strings.ReplaceAll(k, "-", "_")]
	return ok
}

func isBinaryKey(key string) bool {
	k := strings.ToLower(key)
	for _, hint := range binaryKeyHints {
		if strings.Contains(k, hint) {
			return true
		}
	}
	return false
}

// Redact returns a sanitized copy of details containing only JSON-native
// values. Sensitive keys are masked, long strings truncated, large binary
// payloads replaced by their size and nesting cut off below depth 10.
// Redact(Redact(x)) equals Redact(x).
func Redact(details map[string]any) map[string]any {
	if details == nil {
		return map[string]any{}
	}
	return redactMap(details, 0)
}

func redactMap(m map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsSensitiveKey(k) {
			out[k] = RedactedMarker
			continue
		}
		out[k] = redactValue(k, v, depth+1)
	}
	return out
}

func redactValue(key string, v any, depth int) any {
	if depth > maxRedactDepth {
		return DepthMarker
	}
	switch t := v.(type) {
	case nil, bool, float64:
		return t
	case string:
		return redactString(key, t)
	case map[string]any:
		return redactMap(t, depth)
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = redactValue(key, elem, depth+1)
		}
		return out
	default:
		// Structs, typed maps, ints: reduce to JSON-native form first so their
		// fields go through the same rules.
		normalized, ok := normalize(t)
		if !ok {
			return fmt.Sprintf(unserializableFmt, t)
		}
		return redactValue(key, normalized, depth)
	}
}

func redactString(key, s string) string {
	if isBinaryKey(key) && len(s) > maxBinaryLength {
		return fmt.Sprintf(binaryMarkerFmt, len(s))
	}
	if utf8.RuneCountInString(s) <= maxStringLength {
		return s
	}
	if strings.HasSuffix(s, TruncatedMarker) &&
		utf8.RuneCountInString(strings.TrimSuffix(s, TruncatedMarker)) <= maxStringLength {
		return s
	}
	return truncateRunes(s, maxStringLength) + TruncatedMarker
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func normalize(v any) (any, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

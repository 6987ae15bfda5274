package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/httputil"
)

func queryString(q url.Values, key string) string {
	return strings.TrimSpace(q.Get(key))
}

func queryInt(q url.Values, key string) (int, error) {
	raw := queryString(q, key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

func queryBool(q url.Values, key string) (*bool, error) {
	raw := queryString(q, key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be true or false", key))
	}
	return &b, nil
}

// queryTime accepts RFC3339 timestamps and plain dates.
func queryTime(q url.Values, key string) (*time.Time, error) {
	raw := queryString(q, key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be an RFC3339 timestamp or a date", key))
}

// decodeOptional decodes a JSON body into dst, leaving dst untouched when the
// body is empty. On failure it writes an error envelope and returns false.
func decodeOptional(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return false
	}
	return true
}

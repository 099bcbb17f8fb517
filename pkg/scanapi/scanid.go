package scanapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/grafana/regexp"

	"github.com/dmitrymomot/scankit/pkg/logger"
)

const (
	// ScanIDHeader carries the scan ID in requests and responses.
	ScanIDHeader = "X-Scan-ID"
	maxIDLength  = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type scanIDKey struct{}

// ScanIDMiddleware assigns every request a scan ID. A well-formed ID sent
// by the client is kept so callers can correlate their own logs; anything
// else is replaced with a random UUID.
func ScanIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ScanIDHeader)
		if !isValidScanID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(ScanIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithScanID(r.Context(), id)))
	})
}

func isValidScanID(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}

func WithScanID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scanIDKey{}, id)
}

// ScanIDFromContext returns the scan ID or "" when none is set.
func ScanIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(scanIDKey{}).(string)
	return id
}

// ScanIDExtractor adds the scan ID to every record logged with a request
// context.
func ScanIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := ScanIDFromContext(ctx); id != "" {
			return logger.ScanID(id), true
		}
		return slog.Attr{}, false
	}
}

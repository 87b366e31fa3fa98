package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/reorganizer/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for events and logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, clientIP(r), r.UserAgent())
}

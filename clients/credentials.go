package clients

import (
	"context"
	"net/http"
)

type contextKey string

const forwardedHeadersKey contextKey = "forwarded_headers"

// forwardable are the caller headers passed on to the order API.
var forwardable = []string{"Authorization", "X-User-ID", "X-User-Role", "X-User-Email", "X-Request-ID"}

// WithForwardedHeaders stores the identity headers of an incoming request so
// that outgoing gateway calls made on its behalf carry them.
func WithForwardedHeaders(ctx context.Context, in http.Header) context.Context {
	h := http.Header{}
	for _, k := range forwardable {
		if v := in.Get(k); v != "" {
			h.Set(k, v)
		}
	}
	return context.WithValue(ctx, forwardedHeadersKey, h)
}

// ForwardingCredentials forwards caller identity headers and adds a static
// service token when one is configured.
type ForwardingCredentials struct {
	ServiceToken string
}

func (f ForwardingCredentials) Credentials(ctx context.Context) (http.Header, error) {
	h := http.Header{}
	if fwd, ok := ctx.Value(forwardedHeadersKey).(http.Header); ok {
		for k, v := range fwd {
			h[k] = append([]string(nil), v...)
		}
	}
	if f.ServiceToken != "" {
		h.Set("X-Service-Token", f.ServiceToken)
	}
	return h, nil
}

// ForwardedHeader returns one header stored by WithForwardedHeaders.
func ForwardedHeader(ctx context.Context, key string) string {
	if fwd, ok := ctx.Value(forwardedHeadersKey).(http.Header); ok {
		return fwd.Get(key)
	}
	return ""
}

package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindStatus  ErrorKind = "status"
	KindParse   ErrorKind = "parse"
)

// HTTPError is returned by the gateway for every failed round-trip.
type HTTPError struct {
	Kind       ErrorKind
	StatusCode int
	Body       map[string]interface{} // parsed error body, if any
	RawBody    []byte
	Err        error
}

func (e *HTTPError) Error() string {
	switch e.Kind {
	case KindStatus:
		if msg := e.Message(); msg != "" {
			return fmt.Sprintf("status:%d: %s", e.StatusCode, msg)
		}
		return fmt.Sprintf("status:%d", e.StatusCode)
	case KindParse:
		return fmt.Sprintf("parse: %v", e.Err)
	default:
		return fmt.Sprintf("network: %v", e.Err)
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Message returns the "message" or "error" field of the parsed body.
func (e *HTTPError) Message() string {
	if e.Body == nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if v, ok := e.Body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// IsTimeout reports whether the failure was a deadline or client timeout.
func (e *HTTPError) IsTimeout() bool {
	if e.Kind != KindNetwork || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// CredentialsProvider supplies auth headers for outgoing requests.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (http.Header, error)
}

// Gateway is the request contract used by the booking services.
type Gateway interface {
	Request(ctx context.Context, method, path string, body interface{}, query url.Values) (json.RawMessage, error)
}

type GatewayClient struct {
	baseURL     string
	client      *http.Client
	credentials CredentialsProvider
}

func NewGatewayClient(baseURL string, timeout time.Duration, credentials CredentialsProvider) *GatewayClient {
	return &GatewayClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		credentials: credentials,
	}
}

// Request performs one round-trip and returns the raw JSON body of a 2xx
// response. It never retries.
func (g *GatewayClient) Request(ctx context.Context, method, path string, body interface{}, query url.Values) (json.RawMessage, error) {
	return g.do(ctx, method, path, body, query, nil)
}

// RequestWithHeaders is Request with extra per-call headers.
func (g *GatewayClient) RequestWithHeaders(ctx context.Context, method, path string, body interface{}, query url.Values, headers http.Header) (json.RawMessage, error) {
	return g.do(ctx, method, path, body, query, headers)
}

func (g *GatewayClient) do(ctx context.Context, method, path string, body interface{}, query url.Values, headers http.Header) (json.RawMessage, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &HTTPError{Kind: KindParse, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &HTTPError{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if g.credentials != nil {
		creds, err := g.credentials.Credentials(ctx)
		if err != nil {
			return nil, &HTTPError{Kind: KindNetwork, Err: fmt.Errorf("credentials: %w", err)}
		}
		copyHeaders(req.Header, creds)
	}
	copyHeaders(req.Header, headers)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &HTTPError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &HTTPError{Kind: KindNetwork, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{Kind: KindStatus, StatusCode: resp.StatusCode, RawBody: raw}
		var parsed map[string]interface{}
		if len(raw) > 0 && json.Unmarshal(raw, &parsed) == nil {
			httpErr.Body = parsed
		}
		return nil, httpErr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &HTTPError{Kind: KindParse, StatusCode: resp.StatusCode, RawBody: raw, Err: errors.New("response is not valid JSON")}
	}
	return json.RawMessage(raw), nil
}

// DecodeJSON unmarshals a gateway payload, reporting failures as parse errors.
func DecodeJSON(raw json.RawMessage, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &HTTPError{Kind: KindParse, RawBody: raw, Err: err}
	}
	return nil
}

// RequestJSON performs a request and decodes the payload into out.
func RequestJSON(ctx context.Context, g Gateway, method, path string, body interface{}, query url.Values, out interface{}) error {
	raw, err := g.Request(ctx, method, path, body, query)
	if err != nil {
		return err
	}
	return DecodeJSON(raw, out)
}

func copyHeaders(dst, src http.Header) {
	for k, v := range src {
		for _, vv := range v {
			dst.Add(k, vv)
		}
	}
}

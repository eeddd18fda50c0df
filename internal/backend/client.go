// Package backend is the REST client for the ERP backend that owns
// registration tokens, location data and customer records.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kayit/internal/platform/logger"
	"kayit/internal/platform/metrics"
	"kayit/pkg/platform/circuit"
)

const (
	maxBodyBytes = 4 << 20
	tracerName   = "kayit/backend"
)

// Client calls the backend through ordered candidate endpoints, normalizing
// every failure into *Error.
type Client struct {
	baseURL   string
	http      *http.Client
	endpoints Endpoints
	breaker   *circuit.Breaker
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithEndpoints overrides candidate paths per operation. Operations not
// present keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = c.endpoints.merge(e)
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracerProvider sets where call spans are recorded. The global provider
// is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		endpoints: DefaultEndpoints(),
		breaker:   circuit.New("backend"),
		logger:    logger.Discard(),
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateToken asks the backend whether token is a live registration link.
// A well-formed {"success": false} answer is returned without error.
func (c *Client) ValidateToken(ctx context.Context, token string) (TokenValidation, error) {
	var out TokenValidation
	err := c.call(ctx, request{
		op:     OpValidateToken,
		token:  token,
		method: http.MethodGet,
		out:    &out,
		marker: "success",
	})
	return out, err
}

// LocationHierarchy fetches the complete state/city/district tree for a
// country in one call.
func (c *Client) LocationHierarchy(ctx context.Context, token, languageCode, countryCode string) (HierarchyResponse, error) {
	var out HierarchyResponse
	q := url.Values{}
	q.Set("token", token)
	q.Set("languageCode", languageCode)
	q.Set("countryCode", countryCode)
	err := c.call(ctx, request{
		op:     OpLocationHierarchy,
		token:  token,
		method: http.MethodGet,
		query:  q,
		out:    &out,
		marker: "states",
	})
	return out, err
}

// RegisterCustomer creates the customer and returns the backend-assigned code.
func (c *Client) RegisterCustomer(ctx context.Context, token string, in CustomerCreateRequest) (CustomerCreated, error) {
	var out CustomerCreated
	err := c.call(ctx, request{
		op:     OpRegisterCustomer,
		token:  token,
		method: http.MethodPost,
		query:  tokenQuery(token),
		in:     in,
		out:    &out,
		marker: "customerCode",
	})
	if err != nil {
		return CustomerCreated{}, err
	}
	if out.CustomerCode == "" {
		return CustomerCreated{}, NewError(ErrorBadData, OpRegisterCustomer, http.StatusOK, "response carried no customer code", nil)
	}
	return out, nil
}

func (c *Client) RegisterAddress(ctx context.Context, token string, in AddressCreateRequest) error {
	return c.call(ctx, request{op: OpRegisterAddress, token: token, method: http.MethodPost, query: tokenQuery(token), in: in})
}

func (c *Client) RegisterCommunication(ctx context.Context, token string, in CommunicationCreateRequest) error {
	return c.call(ctx, request{op: OpRegisterCommunication, token: token, method: http.MethodPost, query: tokenQuery(token), in: in})
}

func (c *Client) RegisterContact(ctx context.Context, token string, in ContactCreateRequest) error {
	return c.call(ctx, request{op: OpRegisterContact, token: token, method: http.MethodPost, query: tokenQuery(token), in: in})
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *circuit.Breaker {
	return c.breaker
}

type request struct {
	op     Operation
	token  string
	method string
	query  url.Values
	in     any
	out    any
	marker string
}

func tokenQuery(token string) url.Values {
	q := url.Values{}
	q.Set("token", token)
	return q
}

func (c *Client) call(ctx context.Context, r request) (err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "backend."+string(r.op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("backend.op", string(r.op))),
	)
	defer func() {
		outcome := outcomeOf(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, MessageOf(err))
		}
		span.SetAttributes(attribute.String("backend.outcome", outcome))
		span.End()
		c.metrics.ObserveBackend(string(r.op), outcome, start)
	}()

	if !c.breaker.Allow() {
		return NewError(ErrorOutage, r.op, 0, "backend circuit open", nil)
	}

	var payload []byte
	if r.in != nil {
		payload, err = json.Marshal(r.in)
		if err != nil {
			return NewError(ErrorInternal, r.op, 0, "encode request", err)
		}
	}

	candidates := c.endpoints.Candidates(r.op, r.token)
	if len(candidates) == 0 {
		return NewError(ErrorNotFound, r.op, 0, "no endpoint configured", nil)
	}

	var body []byte
	for i, path := range candidates {
		body, err = c.send(ctx, r, path, payload)
		span.AddEvent("candidate", trace.WithAttributes(
			attribute.String("backend.path", path),
			attribute.String("backend.outcome", outcomeOf(err)),
		))
		if err == nil {
			break
		}
		if CategoryOf(err) != ErrorNotFound {
			break
		}
		if i < len(candidates)-1 {
			c.logger.DebugContext(ctx, "backend endpoint missing, trying next candidate",
				"op", r.op, "path", path)
		}
	}
	c.recordHealth(err)
	if err != nil {
		return err
	}
	return decode(r, body)
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return string(CategoryOf(err))
}

func (c *Client) send(ctx context.Context, r request, path string, payload []byte) ([]byte, error) {
	target := c.baseURL + path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, NewError(ErrorInternal, r.op, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(r.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransport(r.op, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, classifyStatus(r.op, resp.StatusCode, raw)
}

func (c *Client) recordHealth(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if category := CategoryOf(err); err != nil && (category == ErrorOutage || category == ErrorTimeout) {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("backend circuit opened", "breaker", c.breaker.Name())
			c.metrics.SetCircuitOpen(true)
		}
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("backend circuit closed", "breaker", c.breaker.Name())
		c.metrics.SetCircuitOpen(false)
	}
}

// decode applies the acknowledgement check and fills r.out from a 2xx body.
func decode(r request, body []byte) error {
	payload := unwrapData(body, r.marker)

	// A refusal may sit beside the envelope or inside it.
	if r.op != OpValidateToken {
		for _, candidate := range [][]byte{bytes.TrimSpace(body), payload} {
			if msg, ok := refused(candidate); ok {
				return rejection(r.op, http.StatusOK, msg, ErrorValidation)
			}
		}
	}
	if r.out == nil {
		return nil
	}
	if len(payload) == 0 {
		return NewError(ErrorBadData, r.op, http.StatusOK, "empty response body", nil)
	}
	if err := json.Unmarshal(payload, r.out); err != nil {
		return NewError(ErrorBadData, r.op, http.StatusOK, "malformed response body", err)
	}
	return nil
}

// refused reports whether raw is a JSON object acknowledging with
// success:false, and the message it carries.
func refused(raw []byte) (string, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return "", false
	}
	var ack statusBody
	if err := json.Unmarshal(raw, &ack); err != nil || ack.Success == nil || *ack.Success {
		return "", false
	}
	return ack.text(), true
}

func classifyTransport(op Operation, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(ErrorTimeout, op, 0, "backend request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(ErrorInternal, op, 0, "request cancelled", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(ErrorTimeout, op, 0, "backend request timed out", err)
	}
	return NewError(ErrorOutage, op, 0, "backend unreachable", err)
}

func classifyStatus(op Operation, status int, body []byte) error {
	var msg string
	var sb statusBody
	if err := json.Unmarshal(unwrapData(body, "message"), &sb); err == nil {
		msg = sb.text()
	}
	// Bodies that are not JSON fall back to the status text below.

	switch {
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		return NewError(ErrorNotFound, op, status, orStatusText(msg, status), nil)
	case status == http.StatusGone:
		return NewError(ErrorTokenExpired, op, status, orStatusText(msg, status), nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return rejection(op, status, msg, ErrorTokenInvalid)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return rejection(op, status, msg, ErrorValidation)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return NewError(ErrorTimeout, op, status, orStatusText(msg, status), nil)
	case status == http.StatusTooManyRequests || status >= 500:
		return NewError(ErrorOutage, op, status, orStatusText(msg, status), nil)
	default:
		return NewError(ErrorInternal, op, status, orStatusText(msg, status), nil)
	}
}

// rejection categorizes a refusal. Messages that talk about expiry mean the
// registration window closed on the backend side.
func rejection(op Operation, status int, msg string, fallback ErrorCategory) error {
	category := fallback
	if strings.Contains(strings.ToLower(msg), "expire") {
		category = ErrorTokenExpired
	}
	return NewError(category, op, status, orStatusText(msg, status), nil)
}

func orStatusText(msg string, status int) string {
	if msg != "" {
		return msg
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return "request rejected"
}

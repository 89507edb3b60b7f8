// Package agenthttp implements the agentcomm port over HTTP/JSON: retrying
// point-to-point sends, single-shot queries, concurrent fan-out, and health
// probes against the configured collaborator agents.
package agenthttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"context"

	"github.com/Strob0t/CityMesh/internal/config"
	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/port/agentcomm"
	"github.com/Strob0t/CityMesh/internal/resilience"
)

const (
	receivePath = "/a2a/receive"
	healthPath  = "/health"
)

// writePaths is the fixed allowlist of endpoint paths that take a POST with
// a JSON body. Everything else is queried with GET and URL parameters.
var writePaths = []string{"/recommendations", "/regulatory-analysis"}

// Client implements agentcomm.Handler. The endpoint registry is read-only
// after construction and safe for concurrent use.
type Client struct {
	endpoints   map[a2a.AgentType]string
	httpClient  *http.Client
	healthHTTP  *http.Client
	maxAttempts int
	backoffBase time.Duration
	breakers    *resilience.Set
}

// New creates a Client from the agents configuration. Endpoint keys must
// name known agent types.
func New(cfg config.Agents) (*Client, error) {
	endpoints := make(map[a2a.AgentType]string, len(cfg.Endpoints))
	for name, base := range cfg.Endpoints {
		at := a2a.AgentType(name)
		if !at.Valid() {
			return nil, fmt.Errorf("agents.endpoints: unknown agent type %q", name)
		}
		endpoints[at] = strings.TrimRight(base, "/")
	}

	transport := otelhttp.NewTransport(http.DefaultTransport)

	return &Client{
		endpoints:   endpoints,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout, Transport: transport},
		healthHTTP:  &http.Client{Timeout: cfg.HealthTimeout, Transport: transport},
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
	}, nil
}

// SetBreakers attaches per-agent circuit breakers. A breaker wraps a whole
// send or query, never individual retry attempts, so retry counts and
// backoff timing are unaffected while the circuit is closed.
func (c *Client) SetBreakers(s *resilience.Set) {
	c.breakers = s
}

// Send delivers msg to its receiver's /a2a/receive channel. The message is
// serialized exactly once; every retry resends the identical bytes with
// exponential backoff (base, 2·base, 4·base, …) between attempts. After the
// attempt budget is exhausted the result is Absent, never an error.
func (c *Client) Send(ctx context.Context, msg a2a.Message) agentcomm.Result {
	base, ok := c.endpoints[msg.ReceiverAgent]
	if !ok {
		slog.Error("no endpoint registered", "agent", msg.ReceiverAgent, "message_id", msg.MessageID)
		return agentcomm.Failure(fmt.Errorf("%w: %s", agentcomm.ErrNoEndpoint, msg.ReceiverAgent))
	}
	if err := msg.Validate(); err != nil {
		return agentcomm.Failure(fmt.Errorf("invalid message %s: %w", msg.MessageID, err))
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return agentcomm.Failure(fmt.Errorf("marshal message %s: %w", msg.MessageID, err))
	}

	target := base + receivePath
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.backoffBase))

	var data json.RawMessage
	attempts := 0
	op := func() error {
		return retry.Do(ctx, backoff, func(ctx context.Context) error {
			attempts++
			d, err := c.roundTrip(ctx, c.httpClient, http.MethodPost, target, bytes.NewReader(body), nil)
			if err != nil {
				slog.Warn("send attempt failed",
					"message_id", msg.MessageID,
					"agent", msg.ReceiverAgent,
					"attempt", attempts,
					"error", err,
				)
				return retry.RetryableError(err)
			}
			data = d
			return nil
		})
	}

	err = c.execute(msg.ReceiverAgent, op)
	switch {
	case err == nil:
		slog.Info("message sent", "message_id", msg.MessageID, "agent", msg.ReceiverAgent, "attempts", attempts)
		return agentcomm.Success(data)
	case errors.Is(err, resilience.ErrCircuitOpen):
		slog.Error("send rejected by circuit breaker", "message_id", msg.MessageID, "agent", msg.ReceiverAgent)
		return agentcomm.Failure(err)
	default:
		slog.Error("send failed",
			"message_id", msg.MessageID,
			"agent", msg.ReceiverAgent,
			"attempts", attempts,
			"error", err,
		)
		return agentcomm.NoData()
	}
}

// Query performs a single-shot call to path on the given agent. The HTTP
// method follows the write-path allowlist: POST with a JSON body for
// submission endpoints, GET with URL parameters otherwise. Any transport
// failure or non-2xx status yields Absent; only configuration and encoding
// faults surface as failures.
func (c *Client) Query(ctx context.Context, agent a2a.AgentType, path string, payload any) agentcomm.Result {
	base, ok := c.endpoints[agent]
	if !ok {
		slog.Error("no endpoint registered", "agent", agent, "path", path)
		return agentcomm.Failure(fmt.Errorf("%w: %s", agentcomm.ErrNoEndpoint, agent))
	}

	target := base + path

	var data json.RawMessage
	op := func() error {
		var err error
		if isWritePath(path) {
			var body []byte
			body, err = json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("marshal query payload: %w", err)
			}
			data, err = c.roundTrip(ctx, c.httpClient, http.MethodPost, target, bytes.NewReader(body), nil)
		} else {
			var params url.Values
			params, err = queryParams(payload)
			if err != nil {
				return fmt.Errorf("encode query payload: %w", err)
			}
			data, err = c.roundTrip(ctx, c.httpClient, http.MethodGet, target, nil, params)
		}
		return err
	}

	if err := c.execute(agent, op); err != nil {
		slog.Warn("query failed", "agent", agent, "path", path, "error", err)
		return agentcomm.NoData()
	}
	return agentcomm.Success(data)
}

// Broadcast fans msg out to every target except the sender, concurrently.
// Each target's outcome is isolated: a failure or panic in one delivery
// never affects the others. The result map contains exactly one entry per
// target excluding the sender.
func (c *Client) Broadcast(ctx context.Context, msg a2a.Message, targets []a2a.AgentType) map[a2a.AgentType]agentcomm.Result {
	results := make(map[a2a.AgentType]agentcomm.Result, len(targets))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, target := range targets {
		if target == msg.SenderAgent {
			continue
		}
		wg.Add(1)
		go func(target a2a.AgentType) {
			defer wg.Done()
			res := c.sendIsolated(ctx, msg.WithReceiver(target))
			mu.Lock()
			results[target] = res
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return results
}

// sendIsolated converts a panicking send into a failure result so one
// broadcast target can never take down its siblings.
func (c *Client) sendIsolated(ctx context.Context, msg a2a.Message) (res agentcomm.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("send panicked", "agent", msg.ReceiverAgent, "panic", r)
			res = agentcomm.Failure(fmt.Errorf("send to %s panicked: %v", msg.ReceiverAgent, r))
		}
	}()
	return c.Send(ctx, msg)
}

// HealthCheck probes the agent's /health endpoint under the short health
// timeout. An unregistered agent is reported unhealthy without any network
// call.
func (c *Client) HealthCheck(ctx context.Context, agent a2a.AgentType) bool {
	base, ok := c.endpoints[agent]
	if !ok {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+healthPath, http.NoBody)
	if err != nil {
		return false
	}

	resp, err := c.healthHTTP.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// AgentStatus runs HealthCheck concurrently for every registered agent.
// A failed probe yields false, never an error.
func (c *Client) AgentStatus(ctx context.Context) map[a2a.AgentType]bool {
	status := make(map[a2a.AgentType]bool, len(c.endpoints))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for agent := range c.endpoints {
		g.Go(func() error {
			healthy := c.HealthCheck(ctx, agent)
			mu.Lock()
			status[agent] = healthy
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return status
}

// execute runs op through the agent's circuit breaker when one is attached.
func (c *Client) execute(agent a2a.AgentType, op func() error) error {
	if c.breakers == nil {
		return op()
	}
	return c.breakers.For(string(agent)).Execute(op)
}

// roundTrip performs one HTTP exchange and returns the response body.
// Any non-2xx status is an error, retried identically to transport faults
// by callers that retry.
func (c *Client) roundTrip(ctx context.Context, client *http.Client, method, target string, body io.Reader, params url.Values) (json.RawMessage, error) {
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return data, nil
}

// isWritePath reports whether path is on the POST allowlist.
func isWritePath(path string) bool {
	for _, p := range writePaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// queryParams flattens a payload struct or map into URL query parameters.
func queryParams(payload any) (url.Values, error) {
	if payload == nil {
		return nil, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("payload must be an object: %w", err)
	}

	params := make(url.Values, len(fields))
	for key, value := range fields {
		params.Set(key, fmt.Sprint(value))
	}
	return params, nil
}

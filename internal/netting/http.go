package netting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultEvalTimeout = 10 * time.Second

// HTTPEvaluator delegates per-bucket netting to an external calculation
// service. A circuit breaker turns a flapping service into fast pair-level
// failures rather than stalling the whole run on timeouts.
type HTTPEvaluator struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPEvaluator creates an HTTP netting evaluator posting to the given URL.
func NewHTTPEvaluator(url string, timeout time.Duration) *HTTPEvaluator {
	if timeout <= 0 {
		timeout = defaultEvalTimeout
	}
	return &HTTPEvaluator{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "netting-evaluator",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Name returns the evaluator identifier.
func (e *HTTPEvaluator) Name() string { return "http" }

// Evaluate posts the bucket input as JSON and decodes the evaluator output.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, in EvalInput) (EvalOutput, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return EvalOutput{}, fmt.Errorf("marshaling evaluator input: %w", err)
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("evaluator status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	})
	if err != nil {
		return EvalOutput{}, fmt.Errorf("evaluator request failed: %w", err)
	}

	var out EvalOutput
	if err := json.Unmarshal(result.([]byte), &out); err != nil {
		return EvalOutput{}, fmt.Errorf("decoding evaluator output: %w", err)
	}
	return out, nil
}

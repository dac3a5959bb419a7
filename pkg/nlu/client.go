package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default configuration values shared by the HTTP providers.
const (
	defaultMaxTokens   = 1024
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 3
	defaultBaseBackoff = 1 * time.Second
)

// Rate limiter defaults: 50 requests per minute.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// extractPrompt is the system prompt for field extraction.
const extractPrompt = `You extract structured facts from one user message in an ongoing consultation interview.

You are given a list of fields (name, description, level, example) and the user's raw message. Return a single JSON object whose keys are field names and whose values are the extracted values as strings. Omit any field you cannot find. Never invent values.

Respond ONLY with the JSON object, no additional text.`

// narrowPrompt is the system prompt for candidate-hour narrowing.
const narrowPrompt = `You narrow down the plausible birth hours of a person given a description of their habits or life events.

You are given the currently plausible hours (0-23) and the description. Return a JSON object:
- "hours": the subset of the given hours consistent with the description (array of integers)
- "best_hour": the single most plausible hour (optional)
- "confidence": "low" or "high" (optional)

The hours you return MUST be a subset of the given hours. Respond ONLY with the JSON object.`

// completer performs one model round trip: system prompt + user
// content in, raw text out. Both HTTP providers implement it; the
// shared retry and parse logic lives here.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// completeWithRetries runs a completion with exponential backoff on
// retryable failures.
func completeWithRetries(ctx context.Context, c completer, maxRetries int, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.complete(ctx, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// extractFields runs the field-extraction round trip and decodes the
// response, filtering to the requested field names.
func extractFields(ctx context.Context, c completer, maxRetries int, req Request) (map[string]string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n\nFields:\n", req.Task)
	for _, f := range req.Fields {
		fmt.Fprintf(&sb, "- %s (%s): %s (example: %s)\n", f.Name, f.Level, f.Description, f.Example)
	}
	fmt.Fprintf(&sb, "\nUser message:\n%s\n", req.Input)

	text, err := completeWithRetries(ctx, c, maxRetries, extractPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	data, ok := ExtractJSON(text)
	if !ok {
		return nil, errors.New("no parseable JSON object in response")
	}
	fields, err := DecodeStringMap(data)
	if err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}

	known := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		known[f.Name] = true
	}
	for k := range fields {
		if !known[k] {
			delete(fields, k)
		}
	}
	return fields, nil
}

// narrowHours runs the hour-narrowing round trip.
func narrowHours(ctx context.Context, c completer, maxRetries int, req HourRequest) (HourResponse, error) {
	hours, err := json.Marshal(req.Candidates)
	if err != nil {
		return HourResponse{}, err
	}
	user := fmt.Sprintf("Plausible hours: %s\n\nDescription:\n%s\n", hours, req.Event)

	text, err := completeWithRetries(ctx, c, maxRetries, narrowPrompt, user)
	if err != nil {
		return HourResponse{}, err
	}

	data, ok := ExtractJSON(text)
	if !ok {
		return HourResponse{}, errors.New("no parseable JSON object in response")
	}
	var resp HourResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return HourResponse{}, fmt.Errorf("decoding narrowing response: %w", err)
	}
	return resp, nil
}

// retryableError wraps an error to indicate it can be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryableError checks if an error should be retried.
func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
)

// circuitKey scopes a rate-limit backoff to one extractor and one API key,
// since vendor limits are enforced per key.
type circuitKey struct {
	index  int
	apiKey string
}

// FallbackExtractor tries extractors in order, skipping those whose circuit is
// open for the row's API key. It implements port.FieldExtractor.
type FallbackExtractor struct {
	extractors []port.FieldExtractor
	names      []string
	log        *logger.Logger
	now        func() time.Time

	mu       sync.Mutex
	circuits map[circuitKey]time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.FieldExtractor, names []string, log *logger.Logger) *FallbackExtractor {
	return &FallbackExtractor{
		extractors: extractors,
		names:      names,
		log:        log.With("component", "FallbackExtractor"),
		now:        time.Now,
		circuits:   make(map[circuitKey]time.Time),
	}
}

func (f *FallbackExtractor) openUntil(key circuitKey, now time.Time) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resetAt, ok := f.circuits[key]
	if !ok {
		return time.Time{}, false
	}
	if !now.Before(resetAt) {
		delete(f.circuits, key)
		return time.Time{}, false
	}
	return resetAt, true
}

func (f *FallbackExtractor) trip(key circuitKey, resetAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.circuits[key] = resetAt
}

// Extract returns the first successful extraction. Credential errors are
// returned immediately since every model shares the same key.
func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		key := circuitKey{index: i, apiKey: input.APIKey}
		if resetAt, open := f.openUntil(key, now); open {
			f.log.Debug("skipping extractor, circuit open", "extractor", f.names[i], "reset_at", resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := e.Extract(ctx, input)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, domain.ErrInvalidCredential) || errors.Is(err, domain.ErrCredentialsRequired) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}

		f.log.Warn("extractor failed", "extractor", f.names[i], "error", err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.trip(key, resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by clients of the
// generation service.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

// RetryBaseDelay is the base duration for exponential backoff on HTTP
// 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// RetryLog receives one line per throttled attempt. Long pipeline runs
// watch it to tell a rate-limited run from a hung one.
var RetryLog io.Writer = os.Stderr

const defaultMaxRetries = 5

// DoWithRetry executes req and retries on HTTP 429 (Too Many Requests)
// with exponential backoff: RetryBaseDelay doubled on each attempt.
//
// When maxRetries is 0 the default (5) is used. Each 429 body is drained
// and closed before the wait, and a notice is written to RetryLog. A
// context cancelled during the wait returns ctx.Err(). Once retries are
// exhausted the last 429 response is returned for the caller to inspect.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		if attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		fmt.Fprintf(RetryLog, "rate limited, retrying in %v (attempt %d/%d)\n", backoff, attempt+1, maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the OpenAlex and Tavily
// clients: retry on rate limiting, and a width-bounded call gate with a
// minimum inter-call delay.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// retryable reports whether the response status warrants a retry. OpenAlex
// and Tavily both signal throttling with 429; 503 shows up during upstream
// maintenance windows.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 or 503 with
// exponential backoff: RetryBaseDelay, doubled each attempt. When the
// response carries a Retry-After header with a second count, that value is
// used instead of the computed backoff.
//
// When maxRetries is 0 the default (3) is used. The response body is drained
// and closed before each retry. If the context is cancelled during a backoff
// wait the function returns ctx.Err(). After exhausting retries the last
// retryable response is returned as-is so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs >= 0 {
				backoff = time.Duration(secs) * time.Second
			}
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

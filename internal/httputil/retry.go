// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// RetryDelays is the fixed backoff schedule between attempts. Two delays
// means at most two retries, three attempts total. Tests override this to
// avoid real sleeps.
var RetryDelays = []time.Duration{1 * time.Second, 2 * time.Second}

// DoWithRetry executes req with a per-attempt timeout and retries on
// HTTP 429, HTTP 5xx, and attempt timeouts, following RetryDelays.
//
// Any other response (including 4xx other than 429) is returned immediately.
// A timeout after the retry budget is exhausted propagates as the attempt's
// error. On each retryable response the body is drained and closed before
// sleeping. If the caller's context is cancelled during a backoff wait the
// function returns ctx.Err(). After exhausting retries the last retryable
// response is returned so the caller can inspect its status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, timeout time.Duration) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := doOnce(ctx, client, req, timeout)
		if err != nil {
			if attempt >= len(RetryDelays) || !IsTimeout(err) {
				return nil, err
			}
		} else if !retryableStatus(resp.StatusCode) || attempt >= len(RetryDelays) {
			return resp, nil
		} else {
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryDelays[attempt]):
		}
	}
}

// doOnce runs a single attempt under its own timeout.
func doOnce(ctx context.Context, client *http.Client, req *http.Request, timeout time.Duration) (*http.Response, error) {
	if timeout <= 0 {
		return client.Do(req.Clone(ctx))
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	resp, err := client.Do(req.Clone(attemptCtx))
	if err != nil {
		cancel()
		return nil, err
	}
	// Tie the attempt context to the body so the caller can still read it.
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the attempt context when the response body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// IsTimeout reports whether err came from an attempt deadline rather than
// the request itself being malformed or the caller cancelling.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

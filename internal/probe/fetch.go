package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// observation is what a single GET produced before classification.
type observation struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// fetch performs one GET under a budget-bound context and reads at most
// maxBody bytes of the body, or all of it when maxBody is not positive.
// Elapsed covers the request and the body read.
func fetch(ctx context.Context, client *http.Client, headers http.Header, maxBody int64, budget time.Duration, target string) (observation, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return observation{}, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return observation{Elapsed: time.Since(start)}, err
	}
	defer resp.Body.Close()

	var src io.Reader = resp.Body
	if maxBody > 0 {
		src = io.LimitReader(resp.Body, maxBody)
	}
	body, err := io.ReadAll(src)
	elapsed := time.Since(start)
	if err != nil {
		return observation{StatusCode: resp.StatusCode, Header: resp.Header, Elapsed: elapsed}, err
	}
	return observation{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Elapsed:    elapsed,
	}, nil
}

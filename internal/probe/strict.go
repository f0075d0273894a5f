package probe

import (
	"context"
	"net/http"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// StrictChecker fetches the target directly under a tight budget. Working
// means a 200 with a non-empty body that arrived inside the budget.
type StrictChecker struct {
	Client *http.Client
	opts   Options
}

func NewStrictChecker(opts Options) (*StrictChecker, error) {
	opts = opts.withDefaults(KindStrict)
	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &StrictChecker{Client: client, opts: opts}, nil
}

func (c *StrictChecker) Check(ctx context.Context, target string) domain.CheckResult {
	obs, err := fetch(ctx, c.Client, c.opts.Headers, c.opts.MaxBodyBytes, c.opts.Timeout, target)
	if err != nil {
		return failed(target, Classify(err), err, c.opts.Timeout)
	}

	working := obs.StatusCode == http.StatusOK &&
		obs.Elapsed < c.opts.Timeout &&
		len(obs.Body) > 0

	return domain.CheckResult{
		URL:          target,
		Status:       domain.WorkingLabel(working, obs.StatusCode),
		Working:      working,
		ResponseTime: domain.Elapsed(obs.Elapsed),
		ContentType:  domain.OrUnknown(obs.Header.Get("Content-Type")),
		Server:       domain.OrUnknown(obs.Header.Get("Server")),
		Content:      domain.Excerpt(string(obs.Body), "İçerik alınamadı"),
	}
}

package probe

import (
	"context"
	"net/http"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// PermissiveChecker fetches the target directly and calls it working when
// the server answers below 400 with both Content-Type and Server headers.
// It is the strategy meant to run with InsecureSkipVerify on.
type PermissiveChecker struct {
	Client *http.Client
	opts   Options
}

func NewPermissiveChecker(opts Options) (*PermissiveChecker, error) {
	opts = opts.withDefaults(KindPermissive)
	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &PermissiveChecker{Client: client, opts: opts}, nil
}

func (c *PermissiveChecker) Check(ctx context.Context, target string) domain.CheckResult {
	obs, err := fetch(ctx, c.Client, c.opts.Headers, c.opts.MaxBodyBytes, c.opts.Timeout, target)
	if err != nil {
		return failed(target, Classify(err), err, c.opts.Timeout)
	}

	contentType := obs.Header.Get("Content-Type")
	server := obs.Header.Get("Server")
	working := obs.StatusCode < http.StatusBadRequest &&
		contentType != "" && server != ""

	return domain.CheckResult{
		URL:          target,
		Status:       domain.WorkingLabel(working, obs.StatusCode),
		Working:      working,
		ResponseTime: domain.Elapsed(obs.Elapsed),
		ContentType:  domain.OrUnknown(contentType),
		Server:       domain.OrUnknown(server),
		Content:      domain.Excerpt(string(obs.Body), "İçerik alınamadı"),
	}
}

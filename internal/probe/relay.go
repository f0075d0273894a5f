package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// RelayChecker asks a content relay to fetch the target and judges the
// relay's report. Its verdict depends on the relay being up and keeping its
// JSON contract; a relay outage shows up as every URL failing.
type RelayChecker struct {
	Client *http.Client
	opts   Options
}

// relayEnvelope is the relay's response body.
type relayEnvelope struct {
	Contents string `json:"contents"`
	Status   struct {
		HTTPCode    int    `json:"http_code"`
		ContentType string `json:"content_type"`
	} `json:"status"`
}

func NewRelayChecker(opts Options) (*RelayChecker, error) {
	opts = opts.withDefaults(KindRelay)
	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &RelayChecker{Client: client, opts: opts}, nil
}

func (c *RelayChecker) relayURL(target string) string {
	return c.opts.RelayBaseURL + url.QueryEscape(target)
}

func (c *RelayChecker) Check(ctx context.Context, target string) domain.CheckResult {
	// the envelope is read whole; a cut JSON document cannot be decoded
	obs, err := fetch(ctx, c.Client, c.opts.Headers, 0, c.opts.Timeout, c.relayURL(target))
	if err != nil {
		f := Classify(err)
		if f != FailTimeout {
			// the relay hides the target's TLS and transport details
			f = FailConnection
		}
		return failed(target, f, err, c.opts.Timeout)
	}

	res := domain.CheckResult{
		URL:          target,
		ResponseTime: domain.Elapsed(obs.Elapsed),
		ContentType:  domain.Unknown,
		Server:       domain.Unknown,
	}

	if obs.StatusCode != http.StatusOK {
		res.Status = domain.WorkingLabel(false, obs.StatusCode)
		res.Content = "Proxy yanıt vermedi"
		return res
	}

	var env relayEnvelope
	if err := json.Unmarshal(obs.Body, &env); err != nil {
		res.Status = domain.FailureLabel("Yanıt Hatası")
		res.Content = "Yanıt işlenemedi"
		return res
	}

	res.Working = env.Status.HTTPCode == http.StatusOK &&
		strings.TrimSpace(env.Contents) != "" &&
		obs.Elapsed < c.opts.Timeout
	res.Status = domain.WorkingLabel(res.Working, env.Status.HTTPCode)
	res.ContentType = domain.OrUnknown(env.Status.ContentType)
	res.Content = domain.Excerpt(env.Contents, "İçerik alınamadı")
	return res
}

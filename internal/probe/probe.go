package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// Checker performs one observation of a URL and always returns a complete
// result. Implementations never return an error or panic.
type Checker interface {
	Check(ctx context.Context, target string) domain.CheckResult
}

// Kind names a strategy.
type Kind string

const (
	KindRelay      Kind = "relay"
	KindPermissive Kind = "permissive"
	KindStrict     Kind = "strict"
)

const (
	DefaultRelayBaseURL = "https://api.allorigins.win/get?url="
	DefaultMaxBodyBytes = 1 << 20 // 1MB
)

// DefaultTimeout is the per-attempt budget of each strategy.
func DefaultTimeout(k Kind) time.Duration {
	switch k {
	case KindPermissive:
		return 10 * time.Second
	case KindStrict:
		return 2 * time.Second
	default:
		return 5 * time.Second
	}
}

// BrowserHeaders is the header set sent by the relay and strict strategies.
func BrowserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7")
	return h
}

// Options configures a strategy and its outbound client.
type Options struct {
	Timeout time.Duration
	Headers http.Header

	// InsecureSkipVerify turns off TLS certificate verification for this
	// checker's client only. Self-signed and internal targets then count as
	// reachable, at the cost of accepting any certificate.
	InsecureSkipVerify bool

	RelayBaseURL  string
	OutboundProxy string // socks5://host:port
	MaxBodyBytes  int64
}

func (o Options) withDefaults(k Kind) Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout(k)
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if k == KindRelay && o.RelayBaseURL == "" {
		o.RelayBaseURL = DefaultRelayBaseURL
	}
	return o
}

// New builds the strategy named by k. Relay and strict strategies get the
// browser header set unless opts carries its own.
func New(k Kind, opts Options) (Checker, error) {
	switch k {
	case KindRelay:
		if opts.Headers == nil {
			opts.Headers = BrowserHeaders()
		}
		return NewRelayChecker(opts)
	case KindPermissive:
		return NewPermissiveChecker(opts)
	case KindStrict:
		if opts.Headers == nil {
			opts.Headers = BrowserHeaders()
		}
		return NewStrictChecker(opts)
	default:
		return nil, fmt.Errorf("unknown check strategy %q", k)
	}
}

package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// NewClient builds the HTTP client a checker uses. TLS settings live on this
// client's transport and never touch http.DefaultTransport.
func NewClient(opts Options) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if opts.OutboundProxy != "" {
		dialer, err := socks5Dialer(opts.OutboundProxy)
		if err != nil {
			return nil, fmt.Errorf("outbound proxy: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}, nil
}

type contextDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

func socks5Dialer(addr string) (contextDialer, error) {
	if !strings.Contains(addr, "://") {
		addr = "socks5://" + addr
	}
	parsed, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "socks5" && parsed.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}

	var auth *proxy.Auth
	if parsed.User != nil {
		pass, _ := parsed.User.Password()
		auth = &proxy.Auth{User: parsed.User.Username(), Password: pass}
	}
	dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}
	ctxDialer, ok := dialer.(contextDialer)
	if !ok {
		return nil, errors.New("proxy dialer does not support context")
	}
	return ctxDialer, nil
}

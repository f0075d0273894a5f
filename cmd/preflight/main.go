// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/hamed0406/linkcheck/internal/config"
	"github.com/hamed0406/linkcheck/internal/probe"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load()
	if err != nil {
		fail(err.Error())
	}
	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		os.Exit(1)
	}
	ok("addr=" + cfg.Addr)
	ok(fmt.Sprintf("strategy=%s workers=%d", cfg.Strategy, cfg.Workers))

	if _, err := probe.New(cfg.Strategy, cfg.ProbeOptions()); err != nil {
		fail("probe setup: " + err.Error())
	}

	if cfg.InsecureSkipVerify {
		warn("INSECURE_SKIP_VERIFY is on: outbound checks accept any TLS certificate.")
	}
	if cfg.Strategy == probe.KindRelay {
		warn("relay strategy: every verdict depends on " + cfg.RelayBaseURL + " being up and within its rate limits.")
	}
	if cfg.OutboundProxy != "" {
		ok("outbound proxy=" + cfg.OutboundProxy)
	}
	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty: CORS allows every origin.")
	}
	if cfg.CheckRPM == 0 {
		warn("CHECK_RPM=0: /check_urls is not rate limited.")
	}

	ok("preflight passed")
}

package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// Failure is the category of a transport-level error.
type Failure int

const (
	FailTransport Failure = iota
	FailTimeout
	FailTLS
	FailConnection
)

func (f Failure) String() string {
	switch f {
	case FailTimeout:
		return "timeout"
	case FailTLS:
		return "tls"
	case FailConnection:
		return "connection"
	default:
		return "transport"
	}
}

// Classify maps an error from building, sending or reading a request onto a
// Failure. Timeouts win over every other category.
func Classify(err error) Failure {
	if err == nil {
		return FailTransport
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailTimeout
	}

	if isTLSError(err) {
		return FailTLS
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailConnection
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return FailConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return FailConnection
	}
	return FailTransport
}

func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		unknownCA    x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidCert  x509.CertificateInvalidError
		recordHeader tls.RecordHeaderError
		alert        tls.AlertError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownCA),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidCert),
		errors.As(err, &recordHeader),
		errors.As(err, &alert):
		return true
	}
	// handshake failures are often plain errors prefixed with "tls: "
	return strings.Contains(err.Error(), "tls: ")
}

// failed builds the record for a direct fetch that produced no response.
func failed(target string, f Failure, err error, budget time.Duration) domain.CheckResult {
	res := domain.CheckResult{
		URL:          target,
		Working:      false,
		ResponseTime: domain.NotApplicable,
		ContentType:  domain.Unknown,
		Server:       domain.Unknown,
	}
	switch f {
	case FailTimeout:
		res.Status = domain.FailureLabel("Zaman Aşımı")
		res.ResponseTime = domain.Exceeded(budget)
		res.Content = "Sunucu yanıt vermedi (timeout)"
	case FailTLS:
		res.Status = domain.FailureLabel("SSL Hatası")
		res.Content = "SSL sertifika hatası: " + err.Error()
	case FailConnection:
		res.Status = domain.FailureLabel("Bağlantı Hatası")
		res.Content = "Sunucuya bağlanılamadı: " + err.Error()
	default:
		res.Status = domain.FailureLabel("İstek Hatası")
		res.Content = "İstek başarısız: " + err.Error()
	}
	return res
}

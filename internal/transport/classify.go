package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"

	"github.com/nao1215/linkprobe/internal/model"
)

// ClassifyError maps a request failure to a ProbeError of the matching kind.
//
//   - context.Canceled             -> Canceled
//   - timeouts of any layer        -> Timeout
//   - DNS, dial, reset, refused    -> Network
//   - everything else (redirect loops, TLS, malformed responses, bad URLs) -> Protocol
func ClassifyError(rawURL string, err error) *model.ProbeError {
	if err == nil {
		return nil
	}
	var pe *model.ProbeError
	if errors.As(err, &pe) {
		return pe
	}
	return model.NewProbeError(kindOf(err), rawURL, err)
}

func kindOf(err error) model.ErrorKind {
	if errors.Is(err, context.Canceled) {
		return model.KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.KindTimeout
	}

	if errors.Is(err, ErrTooManyRedirects) {
		return model.KindProtocol
	}

	var (
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		recordErr   tls.RecordHeaderError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return model.KindProtocol
	}

	var (
		dnsErr  *net.DNSError
		opErr   *net.OpError
		addrErr *net.AddrError
	)
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) || errors.As(err, &addrErr) {
		return model.KindNetwork
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return model.KindNetwork
	}
	if errors.Is(err, ErrProxyCannotConnect) {
		return model.KindNetwork
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && isEOF(urlErr.Err) {
		// The server closed the connection before answering.
		return model.KindNetwork
	}
	return model.KindProtocol
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

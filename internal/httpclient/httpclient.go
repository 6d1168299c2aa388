// Package httpclient builds the outbound HTTP clients with bounded connect, handshake, read and total timeouts.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
)

const (
	maxIdleConnsPerHost = 16
	idleConnTimeout     = 90 * time.Second
)

// NewTransport returns a transport honouring the connect, handshake and read timeouts of cfg.
func NewTransport(cfg config.HTTP) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second, //nolint:mnd
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// New returns a client using rt, or a fresh NewTransport when rt is nil.
// The total request timeout also bounds reading the body.
func New(cfg config.HTTP, rt http.RoundTripper) *http.Client {
	if rt == nil {
		rt = NewTransport(cfg)
	}

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.RequestTimeout,
	}
}

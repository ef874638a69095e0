package youtube

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/proxy"
)

// RequestTimeout bounds a single metadata or search request.
const RequestTimeout = 15 * time.Second

// NewHTTPClient returns the HTTP client shared by the YouTube metadata,
// search and stream requests. proxyStr may be empty, or an http(s)://,
// socks5:// or socks4:// URL.
//
// The client has no overall timeout: audio downloads are read at playback
// speed for the whole track. Short requests set their own deadline.
func NewHTTPClient(proxyStr string) (*http.Client, error) {
	if proxyStr == "" {
		return &http.Client{}, nil
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxyStr, err)
	}

	var transport *http.Transport

	switch proxyURL.Scheme {
	case "http", "https":
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}

	case "socks5", "socks4":
		// socks4 is registered with x/net/proxy by the go-socks4 import
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("%s dialer: %w", proxyURL.Scheme, err)
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}

	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}

	log.Info().Str("component", "youtube").Str("scheme", proxyURL.Scheme).Msg("Using proxy for YouTube requests")

	return &http.Client{Transport: transport}, nil
}

// Package domain contains entities without transport logic, just meta-data
package domain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPort = 8080
	DefaultPath = "/ws"
)

var (
	ErrAddressEmpty  = errors.New("address empty")
	ErrAddressPort   = errors.New("invalid port")
	ErrAddressScheme = errors.New("unsupported scheme")
	ErrAddressHost   = errors.New("invalid host")
)

// Endpoint is the robot address for one connect attempt.
type Endpoint struct {
	Host string
	Port int
	Path string
}

// ParseEndpoint builds an Endpoint from operator text: a host, host:port or a
// full ws:// URL. An explicit port in the text wins over defaultPort, and a
// URL path wins over path.
func ParseEndpoint(address string, defaultPort int, path string) (Endpoint, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return Endpoint{}, ErrAddressEmpty
	}
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return Endpoint{}, fmt.Errorf("%w: %v", ErrAddressHost, err)
		}
		if u.Scheme != "ws" {
			return Endpoint{}, fmt.Errorf("%w: %q", ErrAddressScheme, u.Scheme)
		}
		if u.Host == "" {
			return Endpoint{}, ErrAddressEmpty
		}
		if u.Path != "" && u.Path != "/" {
			path = u.Path
		}
		addr = u.Host
	} else {
		addr = strings.TrimSuffix(addr, "/")
	}
	if strings.Contains(addr, "/") {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrAddressHost, addr)
	}

	if defaultPort <= 0 {
		defaultPort = DefaultPort
	}
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	ep := Endpoint{Host: addr, Port: defaultPort, Path: path}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return Endpoint{}, fmt.Errorf("%w: %q", ErrAddressPort, port)
		}
		if host == "" {
			return Endpoint{}, ErrAddressEmpty
		}
		ep.Host = host
		ep.Port = p
	} else {
		ep.Host = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	}
	return ep, nil
}

// URL renders ws://host:port/path.
func (e Endpoint) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   e.Path,
	}
	return u.String()
}

func (e Endpoint) String() string { return e.URL() }

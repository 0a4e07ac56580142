package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// SplitAddr splits "host[:port]" and fills in defaultPort when the port
// is omitted.  Bracketed IPv6 literals are accepted with or without a
// port.
func SplitAddr(addr string, defaultPort int) (host string, port int, err error) {
	if addr == "" {
		return "", 0, fmt.Errorf("address is empty")
	}

	h, p, splitErr := net.SplitHostPort(addr)
	if splitErr != nil {
		// No port: a bare name, IPv4 literal, or [v6] literal.
		if strings.Count(addr, ":") > 1 && !strings.HasPrefix(addr, "[") {
			return "", 0, fmt.Errorf("ambiguous address %q: wrap IPv6 literals in brackets", addr)
		}
		h = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
		if h == "" {
			return "", 0, fmt.Errorf("address %q has no host", addr)
		}
		return h, defaultPort, nil
	}

	if h == "" {
		return "", 0, fmt.Errorf("address %q has no host", addr)
	}
	port, err = strconv.Atoi(p)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q in %q", p, addr)
	}
	return h, port, nil
}

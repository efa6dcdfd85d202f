package menus

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidPort    = errors.New("invalid port")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

const (
	msgInvalidPort    = "Invalid port"
	msgInvalidTimeout = "Invalid timeout, it must be a number in seconds"
)

var hostPattern = regexp.MustCompile(`^(https?)://(\S+)$`)

// ParseHost strips an http or https scheme from raw. When a scheme is
// present ssl reports whether it was https and hasScheme is true.
func ParseHost(raw string) (host string, ssl, hasScheme bool) {
	raw = strings.TrimSpace(raw)
	m := hostPattern.FindStringSubmatch(raw)
	if m == nil {
		return raw, false, false
	}
	return m[2], m[1] == "https", true
}

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return 0, ErrInvalidPort
	}
	return port, nil
}

// ParseTimeout accepts a whole number of seconds.
func ParseTimeout(raw string) (int, error) {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds < 0 {
		return 0, ErrInvalidTimeout
	}
	return seconds, nil
}

package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// EndpointValidator checks the base URL of a remote contacts server
type EndpointValidator struct {
	// AllowLocalhost permits loopback hosts, which is the common setup for
	// `lazyload serve` on the same machine
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses
	AllowPrivateIPs bool
	MaxLength       int
}

// NewEndpointValidator allows local and private hosts
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// NewStrictEndpointValidator only accepts public hosts
func NewStrictEndpointValidator() *EndpointValidator {
	return &EndpointValidator{MaxLength: 2048}
}

// ValidateAndNormalize returns the endpoint without query, fragment or
// trailing slash. A missing scheme defaults to http.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("endpoint cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("endpoint too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("endpoint contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "http://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("endpoint must use http or https protocol")
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("endpoint must have a valid hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("credentials in endpoint are not permitted")
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in endpoint path")
	}

	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), nil
}

func (v *EndpointValidator) validateHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost endpoints are not permitted")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() {
			return fmt.Errorf("unspecified address is not a valid endpoint")
		}
		if !v.AllowPrivateIPs && (ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
		if !v.AllowLocalhost && ip.IsLoopback() {
			return fmt.Errorf("localhost endpoints are not permitted")
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "::1" ||
		strings.HasPrefix(hostname, "127.") ||
		strings.HasSuffix(hostname, ".localhost")
}

package netaddr

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var hostRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,62}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,62}[a-zA-Z0-9])?)*$`)

// NormalizeMAC canonicalizes a MAC address into colon-separated lower
// case. The empty string is allowed; several device kinds are created
// before their hardware address is known.
func NormalizeMAC(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return "", fmt.Errorf("invalid MAC address %q", raw)
	}
	return hw.String(), nil
}

// ValidateHost checks that addr is an IP address or a plausible
// hostname and returns the trimmed form. The probe subsystem hands
// this value to the system ping binary, so anything else is rejected
// up front.
func ValidateHost(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("address is empty")
	}
	if net.ParseIP(s) != nil {
		return s, nil
	}
	if len(s) <= 253 && hostRe.MatchString(s) {
		return s, nil
	}
	return "", fmt.Errorf("invalid address %q", raw)
}

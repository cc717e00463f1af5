package utils

import (
	"fmt"
	"net"
	"strings"
)

func IsIPv4IP(ip net.IP) bool {
	return ip.To4() != nil
}

// IPv4NetworkPrefix returns the first three octets of an IPv4 address,
// e.g. "192.168.99" for "192.168.99.100".
func IPv4NetworkPrefix(ip net.IP) (string, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return "", fmt.Errorf("not an ipv4 address: '%v'", ip)
	}

	return strings.Join(strings.Split(ip4.String(), ".")[:3], "."), nil
}

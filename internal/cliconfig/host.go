package cliconfig

import (
	"fmt"
	"net"
)

// interfaceAddrs is replaced in tests.
var interfaceAddrs = net.InterfaceAddrs

// LoadHostInfo fills HostIP from the host's interfaces when it is not set.
func LoadHostInfo(cfg *Config) error {
	if cfg.HostIP != "" {
		return nil
	}
	addrs, err := interfaceAddrs()
	if err != nil {
		return fmt.Errorf("list interface addresses: %w", err)
	}
	ip, ok := firstIPv4(addrs)
	if !ok {
		return fmt.Errorf("host-ip is required (no non-loopback IPv4 address found)")
	}
	cfg.HostIP = ip
	return nil
}

// firstIPv4 returns the first non-loopback IPv4 address in addrs.
func firstIPv4(addrs []net.Addr) (string, bool) {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), true
		}
	}
	return "", false
}


package system

import (
	"net"
	"strings"

	"github.com/KevinKickass/OpenRelayCore/internal/interfaces"
)

const unknownAddress = "unknown"

// DetectNetworkInfo returns the IPv4 and MAC address of the first
// interface that is up, not loopback, and has an IPv4 address.
func DetectNetworkInfo() interfaces.NetworkInfo {
	ifaces, err := net.Interfaces()
	if err != nil {
		return interfaces.NetworkInfo{IPAddress: unknownAddress, MACAddress: unknownAddress}
	}
	return pickNetworkInfo(ifaces, func(iface net.Interface) ([]net.Addr, error) {
		return iface.Addrs()
	})
}

func pickNetworkInfo(ifaces []net.Interface, addrs func(net.Interface) ([]net.Addr, error)) interfaces.NetworkInfo {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		list, err := addrs(iface)
		if err != nil {
			continue
		}

		for _, addr := range list {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				mac := unknownAddress
				if len(iface.HardwareAddr) > 0 {
					mac = strings.ToUpper(iface.HardwareAddr.String())
				}
				return interfaces.NetworkInfo{IPAddress: ip4.String(), MACAddress: mac}
			}
		}
	}

	return interfaces.NetworkInfo{IPAddress: unknownAddress, MACAddress: unknownAddress}
}

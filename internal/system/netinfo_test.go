package system

import (
	"net"
	"testing"
)

func TestPickNetworkInfo(t *testing.T) {
	mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	ifaces := []net.Interface{
		{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
		{Index: 2, Name: "down0", Flags: 0, HardwareAddr: mac},
		{Index: 3, Name: "v6only", Flags: net.FlagUp, HardwareAddr: mac},
		{Index: 4, Name: "eth0", Flags: net.FlagUp, HardwareAddr: mac},
	}

	addrs := map[string][]net.Addr{
		"lo":     {&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}},
		"down0":  {&net.IPNet{IP: net.ParseIP("10.0.0.9"), Mask: net.CIDRMask(24, 32)}},
		"v6only": {&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}},
		"eth0":   {&net.IPNet{IP: net.ParseIP("192.168.1.50"), Mask: net.CIDRMask(24, 32)}},
	}

	info := pickNetworkInfo(ifaces, func(iface net.Interface) ([]net.Addr, error) {
		return addrs[iface.Name], nil
	})

	if info.IPAddress != "192.168.1.50" {
		t.Errorf("IPAddress = %q", info.IPAddress)
	}
	if info.MACAddress != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("MACAddress = %q", info.MACAddress)
	}
}

func TestPickNetworkInfoNoUsableInterface(t *testing.T) {
	info := pickNetworkInfo(nil, nil)
	if info.IPAddress != unknownAddress || info.MACAddress != unknownAddress {
		t.Errorf("info = %+v", info)
	}
}

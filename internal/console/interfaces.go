package console

import (
	"net"
	"strings"
)

type Interface struct {
	Name string
	Addr string
}

// Highlight marks tunnel and ethernet interfaces, the ones usually handed
// to a remote client.
func (i Interface) Highlight() bool {
	return strings.Contains(i.Name, "tun") || strings.Contains(i.Name, "eth")
}

// Interfaces lists the IPv4 addresses of every interface that is up,
// loopback excluded.
func Interfaces() ([]Interface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []Interface
	for _, ifc := range ifs {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipn, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if v4 := ipn.IP.To4(); v4 != nil {
				out = append(out, Interface{Name: ifc.Name, Addr: v4.String()})
			}
		}
	}
	return out, nil
}

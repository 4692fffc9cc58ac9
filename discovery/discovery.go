// Package discovery locates a controller broker on the local network
// using mDNS, for devices configured without an explicit host.
package discovery

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service controllers advertise.
const ServiceType = "_telelink._tcp"

// Controller is a discovered controller broker.
type Controller struct {
	Name       string
	Address    string
	Port       int
	TXTRecords []string
}

// Discover looks up the first controller advertised on the local network.
// A zero timeout defaults to 5 seconds.
func Discover(timeout time.Duration) (*Controller, error) {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	entriesCh := make(chan *mdns.ServiceEntry, 4)

	go func() {
		defer close(entriesCh)
		mdns.Lookup(ServiceType, entriesCh)
	}()

	select {
	case entry := <-entriesCh:
		if entry == nil {
			return nil, fmt.Errorf("no %s service found", ServiceType)
		}

		var address string
		if entry.AddrV4 != nil {
			address = entry.AddrV4.String()
		} else if entry.AddrV6 != nil {
			address = fmt.Sprintf("[%s]", entry.AddrV6.String())
		} else {
			return nil, fmt.Errorf("no valid address found for controller")
		}

		ctrl := &Controller{
			Name:       entry.Name,
			Address:    address,
			Port:       entry.Port,
			TXTRecords: entry.InfoFields,
		}

		slog.Info("Discovered controller",
			"name", ctrl.Name,
			"address", ctrl.Address,
			"port", ctrl.Port,
		)

		return ctrl, nil

	case <-time.After(timeout):
		return nil, fmt.Errorf("mDNS discovery timeout for %s", ServiceType)
	}
}

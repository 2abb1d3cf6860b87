package registry

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS constants for node advertising.
const (
	// ServiceType is the mDNS service type for device gateways.
	ServiceType = "_chardev._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63
)

// Advertiser announces device nodes on the local network.
type Advertiser interface {
	// Advertise starts advertising a node.
	Advertise(ctx context.Context, info *NodeInfo) error

	// Update refreshes the TXT records for an advertised node.
	Update(info *NodeInfo) error

	// Stop stops advertising a node by name.
	Stop(name string) error

	// StopAll stops all advertisements.
	StopAll()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // keyed by node name
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising a node.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *NodeInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop existing advertisement for this node if any
	if server, exists := a.servers[info.Name]; exists {
		server.Shutdown()
		delete(a.servers, info.Name)
	}

	instanceName := info.Name
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtStrings := EncodeTXT(info)

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	ifaces := a.getInterfaces()

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		info.Port,
		txtStrings,
		ifaces,
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register node service: %w", err)
	}

	a.servers[info.Name] = server
	return nil
}

// Update refreshes the TXT records for an advertised node.
func (a *MDNSAdvertiser) Update(info *NodeInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[info.Name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, info.Name)
	}

	server.SetText(EncodeTXT(info))
	return nil
}

// Stop stops advertising a node by name.
func (a *MDNSAdvertiser) Stop(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}

	server.Shutdown()
	delete(a.servers, name)
	return nil
}

// StopAll stops all advertisements.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, server := range a.servers {
		server.Shutdown()
		delete(a.servers, name)
	}
}

// Ensure MDNSAdvertiser implements Advertiser.
var _ Advertiser = (*MDNSAdvertiser)(nil)

package registry

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// DiscoveredNode is a device node found on the local network.
type DiscoveredNode struct {
	// Instance is the mDNS instance name.
	Instance string

	// Info holds the decoded TXT records.
	Info NodeInfo

	// Host is the advertised hostname.
	Host string

	// Addresses are the IP addresses the node was seen on.
	Addresses []string

	// Port is the gateway port.
	Port int
}

// Addr returns a dialable address for the node, preferring IPv4.
func (n *DiscoveredNode) Addr() string {
	if len(n.Addresses) == 0 {
		return ""
	}
	return net.JoinHostPort(n.Addresses[0], fmt.Sprintf("%d", n.Port))
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to browse on.
	// Empty string means all interfaces.
	Interface string

	// BrowseTimeout bounds FindByName lookups.
	// Default: 5 seconds.
	BrowseTimeout time.Duration
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: 5 * time.Second,
	}
}

// MDNSBrowser discovers advertised device nodes using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = 5 * time.Second
	}
	return &MDNSBrowser{config: config}, nil
}

// browserOptions builds the zeroconf client options.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToNode converts a zeroconf entry to a DiscoveredNode.
// Returns nil for entries without valid node TXT records.
func (b *MDNSBrowser) entryToNode(entry *zeroconf.ServiceEntry) *DiscoveredNode {
	info, err := DecodeTXT(entry.Text)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &DiscoveredNode{
		Instance:  entry.Instance,
		Info:      *info,
		Host:      entry.HostName,
		Addresses: addrs,
		Port:      entry.Port,
	}
}

// Browse searches for device nodes until ctx is done. Each node is emitted
// once; entries seen again on another interface merge their addresses into
// the first emission.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *DiscoveredNode, error) {
	out := make(chan *DiscoveredNode)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		seen := make(map[string]*DiscoveredNode)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				node := b.entryToNode(entry)
				if node == nil {
					continue
				}

				existing, found := seen[node.Instance]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, node.Addresses)
					continue
				}

				seen[node.Instance] = node
				select {
				case out <- node:
				case <-ctx.Done():
					return
				}

			case <-removed:
				// Removal notices are not surfaced; a lookup that matters
				// fails at dial time anyway.

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindByName browses until a node with the given device name is found or the
// browse timeout expires.
func (b *MDNSBrowser) FindByName(ctx context.Context, name string) (*DiscoveredNode, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	nodes, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for node := range nodes {
		if node.Info.Name == name {
			return node, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
}

// mergeAddresses appends addresses from b that are not already in a.
func mergeAddresses(a, b []string) []string {
	for _, addr := range b {
		found := false
		for _, existing := range a {
			if existing == addr {
				found = true
				break
			}
		}
		if !found {
			a = append(a, addr)
		}
	}
	return a
}

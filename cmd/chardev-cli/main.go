// Command chardev-cli is an interactive client for a chardevd gateway.
//
// It connects to a gateway, then offers a readline shell with commands for
// the device session protocol: open, read, write, close, and stat. The
// shell maintains the caller-side offset cursor that the protocol expects,
// advancing it from the offsets the gateway returns.
//
// Usage:
//
//	chardev-cli [flags]
//
// Flags:
//
//	-addr string      Gateway address (default "127.0.0.1:9444")
//	-name string      Resolve the gateway via mDNS by device name
//	-discover         List advertised device nodes and exit
//	-tls              Connect with TLS
//	-insecure         Skip TLS certificate verification (testing only)
//	-timeout duration Request timeout (default 10s)
//
// Example session:
//
//	chardev> open
//	OK
//	chardev> write hello world
//	11 bytes written, offset now 11
//	chardev> rewind
//	chardev> read
//	"hello world" (11 bytes, offset now 11)
//	chardev> close
//	OK
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/scobi84/chardev-go/pkg/registry"
	"github.com/scobi84/chardev-go/pkg/transport"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9444", "Gateway address")
	name := flag.String("name", "", "Resolve the gateway via mDNS by device name")
	discover := flag.Bool("discover", false, "List advertised device nodes and exit")
	useTLS := flag.Bool("tls", false, "Connect with TLS")
	insecure := flag.Bool("insecure", false, "Skip TLS certificate verification (testing only)")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	if *discover {
		if err := runDiscover(*timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	target := *addr
	if *name != "" {
		resolved, err := resolveByName(*name, *timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve %q: %v\n", *name, err)
			os.Exit(1)
		}
		target = resolved
	}

	clientConfig := transport.ClientConfig{}
	if *useTLS {
		clientConfig.TLSConfig = &transport.TLSConfig{
			InsecureSkipVerify: *insecure,
		}
	}

	client, err := transport.NewClient(clientConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conn, err := client.Connect(context.Background(), target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", target, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", target)

	shell, err := newShell(conn, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	shell.Run()
}

// runDiscover browses for advertised nodes and prints what it finds.
func runDiscover(timeout time.Duration) error {
	browser, err := registry.NewMDNSBrowser(registry.DefaultBrowserConfig())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	nodes, err := browser.Browse(ctx)
	if err != nil {
		return err
	}

	count := 0
	for node := range nodes {
		count++
		state := "idle"
		if node.Info.Open {
			state = "open"
		}
		fmt.Printf("%s  %s  cap=%d  %s  %s\n",
			node.Info.Name, node.Info.Path, node.Info.Capacity, state, node.Addr())
	}

	if count == 0 {
		fmt.Println("No device nodes found")
	}
	return nil
}

// resolveByName finds a node via mDNS and returns its dialable address.
func resolveByName(name string, timeout time.Duration) (string, error) {
	browser, err := registry.NewMDNSBrowser(registry.BrowserConfig{BrowseTimeout: timeout})
	if err != nil {
		return "", err
	}

	node, err := browser.FindByName(context.Background(), name)
	if err != nil {
		return "", err
	}
	if node.Addr() == "" {
		return "", fmt.Errorf("node %q has no reachable address", name)
	}
	return node.Addr(), nil
}

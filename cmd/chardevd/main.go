// Command chardevd serves an exclusive-access byte-stream device over a
// framed session protocol.
//
// The daemon registers the device in a node registry, exposes it through a
// TCP (optionally TLS) gateway, and can advertise the node via mDNS so
// clients find it without configuration.
//
// Usage:
//
//	chardevd [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-name string          Device name (default "chardev")
//	-tag int              Device instance tag
//	-capacity int         Buffer capacity in bytes (default 1024)
//	-listen string        Listen address (default ":9444")
//	-tls-cert string      TLS certificate file (enables TLS with -tls-key)
//	-tls-key string       TLS key file
//	-protocol-log string  Protocol log file path (CBOR)
//	-mdns                 Advertise the device node via mDNS
//	-log-level string     Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Serve the default 1 KiB device on port 9444
//	chardevd
//
//	# Named device with protocol logging and mDNS
//	chardevd -name sensor0 -protocol-log sensor0.clog -mdns
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/scobi84/chardev-go/pkg/device"
	"github.com/scobi84/chardev-go/pkg/gateway"
	"github.com/scobi84/chardev-go/pkg/log"
	"github.com/scobi84/chardev-go/pkg/registry"
	"github.com/scobi84/chardev-go/pkg/transport"
	"github.com/scobi84/chardev-go/pkg/version"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path (YAML)")
	name := flag.String("name", "", "Device name")
	tag := flag.Int("tag", -1, "Device instance tag")
	capacity := flag.Int("capacity", 0, "Buffer capacity in bytes")
	listen := flag.String("listen", "", "Listen address")
	tlsCert := flag.String("tls-cert", "", "TLS certificate file")
	tlsKey := flag.String("tls-key", "", "TLS key file")
	protocolLog := flag.String("protocol-log", "", "Protocol log file path (CBOR)")
	mdns := flag.Bool("mdns", false, "Advertise the device node via mDNS")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Flags override file settings
	if *name != "" {
		cfg.Device.Name = *name
	}
	if *tag >= 0 {
		cfg.Device.Tag = *tag
	}
	if *capacity > 0 {
		cfg.Device.Capacity = *capacity
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *tlsCert != "" {
		cfg.TLS.CertFile = *tlsCert
	}
	if *tlsKey != "" {
		cfg.TLS.KeyFile = *tlsKey
	}
	if *protocolLog != "" {
		cfg.ProtocolLog = *protocolLog
	}
	if *mdns {
		cfg.MDNS = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newConsoleLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	logger.Info("starting device daemon",
		"name", cfg.Device.Name,
		"capacity", cfg.Device.Capacity,
		"listen", cfg.Listen,
		"version", version.Current)

	// Protocol logger: CBOR file, with console mirroring at debug level
	protoLogger, closeProtoLog, err := buildProtocolLogger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProtoLog()

	// Node registry
	nodeRegistry := registry.NewNodeRegistry()
	node, err := nodeRegistry.Register(cfg.Device.Name, cfg.Device.Tag)
	if err != nil {
		return fmt.Errorf("failed to register device node: %w", err)
	}
	logger.Info("registered device node",
		"path", node.Path,
		"major", node.Major,
		"minor", node.Minor)

	// Device
	dev := device.New(device.Config{
		Name:     cfg.Device.Name,
		Tag:      cfg.Device.Tag,
		Capacity: cfg.Device.Capacity,
		Registry: node,
		Logger:   protoLogger,
	})

	// Gateway and transport server
	gw := gateway.New(gateway.Config{
		Device:   dev,
		NodePath: node.Path,
		Logger:   protoLogger,
	})

	serverConfig := gw.ServerConfig(cfg.Listen)
	if cfg.TLS.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("failed to load TLS key pair: %w", err)
		}
		serverConfig.TLSConfig = &transport.TLSConfig{Certificate: cert}
	}

	server, err := transport.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info("gateway listening", "addr", server.Addr().String())

	// Optional mDNS advertising
	var advertiser registry.Advertiser
	if cfg.MDNS {
		advertiser, err = startAdvertising(ctx, cfg, nodeRegistry, node, dev, server.Addr(), logger)
		if err != nil {
			server.Stop()
			return err
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	// Teardown in reverse order of setup
	if advertiser != nil {
		advertiser.StopAll()
	}
	if err := server.Stop(); err != nil {
		logger.Error("error stopping server", "err", err)
	}
	if err := nodeRegistry.Unregister(cfg.Device.Name); err != nil {
		logger.Error("error unregistering node", "err", err)
	}

	logger.Info("goodbye")
	return nil
}

// buildProtocolLogger assembles the protocol logger from the configuration.
// The returned close function is a no-op when protocol logging is disabled.
func buildProtocolLogger(cfg Config, logger *slog.Logger) (log.Logger, func(), error) {
	loggers := []log.Logger{}

	var fileLogger *log.FileLogger
	if cfg.ProtocolLog != "" {
		var err error
		fileLogger, err = log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open protocol log: %w", err)
		}
		loggers = append(loggers, fileLogger)
		logger.Info("protocol logging enabled", "path", cfg.ProtocolLog)
	}

	if cfg.LogLevel == "debug" {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	closeFn := func() {
		if fileLogger != nil {
			fileLogger.Close()
		}
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}

// startAdvertising announces the node over mDNS and keeps its TXT records
// current as the device opens and closes.
func startAdvertising(ctx context.Context, cfg Config, nodeRegistry *registry.NodeRegistry,
	node *registry.Node, dev *device.Device, addr net.Addr, logger *slog.Logger) (registry.Advertiser, error) {

	advConfig := registry.DefaultAdvertiserConfig()
	advConfig.Interface = cfg.MDNSInterface

	advertiser, err := registry.NewMDNSAdvertiser(advConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS advertiser: %w", err)
	}

	port := 0
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		port = tcpAddr.Port
	} else if _, portStr, err := net.SplitHostPort(addr.String()); err == nil {
		port, _ = strconv.Atoi(portStr)
	}

	nodeInfo := func() *registry.NodeInfo {
		return &registry.NodeInfo{
			Name:     node.Name,
			Tag:      node.Tag,
			Path:     node.Path,
			Capacity: dev.Capacity(),
			Open:     dev.IsOpen(),
			Port:     port,
		}
	}

	if err := advertiser.Advertise(ctx, nodeInfo()); err != nil {
		return nil, fmt.Errorf("failed to advertise node: %w", err)
	}
	logger.Info("advertising node via mDNS", "service", registry.ServiceType, "port", port)

	// Refresh TXT records on open/close transitions
	nodeRegistry.OnChange(func(*registry.Node) {
		if err := advertiser.Update(nodeInfo()); err != nil {
			logger.Warn("failed to update mDNS records", "err", err)
		}
	})

	return advertiser, nil
}

// newConsoleLogger builds the console slog logger for the given level.
func newConsoleLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	return slog.New(handler)
}

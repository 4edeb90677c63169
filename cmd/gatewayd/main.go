// Program gatewayd runs the telemetry ingest gateway: it binds a UDP
// socket (or replays a capture), classifies every frame's sequence
// number, aggregates stats, and serves an ASCII command channel over TCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentrygate/eventarchive"
	"sentrygate/eventbus"
	"sentrygate/gateway"
	"sentrygate/gwconfig"
	"sentrygate/mqttsink"
	"sentrygate/sourcestore"
)

var logLevels = map[string]eventbus.Severity{
	"DEBUG": eventbus.SeverityDebug,
	"INFO":  eventbus.SeverityInfo,
	"WARN":  eventbus.SeverityWarn,
	"ALARM": eventbus.SeverityAlarm,
	"ERROR": eventbus.SeverityError,
	"FATAL": eventbus.SeverityFatal,
}

func main() {
	configPath := flag.String("config", "", "path to a gwconfig YAML file (optional)")
	port := flag.Int("port", 0, "UDP port to listen on")
	crc := flag.Bool("crc", false, "enable CRC validation")
	noCRC := flag.Bool("no-crc", false, "disable CRC validation")
	record := flag.String("record", "", "record frames to file")
	replay := flag.String("replay", "", "replay frames from file instead of UDP")
	logLevel := flag.String("log-level", "", "log level: DEBUG, INFO, WARN, ALARM, ERROR, FATAL")
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		loaded, err := gwconfig.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gatewayd: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	if *port != 0 {
		cfg.Gateway.UDPPort = uint16(*port)
	}
	if *crc {
		cfg.Gateway.CRCEnabled = true
	}
	if *noCRC {
		cfg.Gateway.CRCEnabled = false
	}
	if *record != "" {
		cfg.Gateway.RecordPath = *record
	}
	if *replay != "" {
		cfg.Gateway.ReplayPath = *replay
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	level, ok := logLevels[cfg.Logging.Level]
	if !ok {
		level = eventbus.SeverityInfo
	}

	gwCfg := gateway.Config{
		UDPPort:     cfg.Gateway.UDPPort,
		CRCEnabled:  cfg.Gateway.CRCEnabled,
		RecordPath:  cfg.Gateway.RecordPath,
		ReplayPath:  cfg.Gateway.ReplayPath,
		ReplaySpeed: cfg.Gateway.ReplaySpeed,
		CommandPort: cfg.Command.Port,
		LogOutput:   os.Stdout,
		LogLevel:    level,
	}

	if cfg.SourceStore.Enabled {
		store, err := sourcestore.Open(cfg.SourceStore.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gatewayd: source store disabled, open failed: %v\n", err)
		} else {
			defer store.Close()
			gwCfg.SourceStore = store
			gwCfg.SnapshotInterval = time.Duration(cfg.SourceStore.SnapshotIntervalSeconds) * time.Second
		}
	}

	if cfg.Archive.Enabled {
		archive, err := eventarchive.Open(eventarchive.Config{
			DBPath:          cfg.Archive.Path,
			QueueSize:       cfg.Archive.QueueSize,
			BatchSize:       cfg.Archive.BatchSize,
			BatchIntervalMS: cfg.Archive.BatchIntervalMS,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "gatewayd: event archive disabled, open failed: %v\n", err)
		} else {
			defer archive.Close()
			gwCfg.Archive = archive
		}
	}

	if cfg.MQTT.Enabled {
		sink := mqttsink.New(mqttsink.Config{
			Broker: cfg.MQTT.Broker,
			Port:   cfg.MQTT.Port,
			Topic:  cfg.MQTT.Topic,
		})
		if err := sink.Connect(); err != nil {
			fmt.Fprintf(os.Stderr, "gatewayd: mqtt sink disabled, connect failed: %v\n", err)
		} else {
			defer sink.Disconnect(250)
			gwCfg.MQTT = sink
		}
	}

	gw := gateway.New(gwCfg)

	fmt.Printf("Starting gateway on UDP port %d\n", gwCfg.UDPPort)
	if gwCfg.RecordPath != "" {
		fmt.Printf("Recording to: %s\n", gwCfg.RecordPath)
	}
	if gwCfg.ReplayPath != "" {
		fmt.Printf("Replaying from: %s\n", gwCfg.ReplayPath)
	}
	fmt.Printf("CRC validation: %s\n", enabledDisabled(gwCfg.CRCEnabled))
	fmt.Printf("Command channel: port %d\n", gwCfg.CommandPort)
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal: %v\n", sig)
		fmt.Println("Shutting down gracefully...")
		gw.Stop()
		cancel()
	}()

	if err := gw.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gatewayd: %v\n", err)
	}

	printFinalStats(gw)
}

func defaultConfig() gwconfig.Config {
	return gwconfig.Config{
		Gateway: gwconfig.GatewayConfig{UDPPort: 9700, CRCEnabled: true, ReplaySpeed: 1.0},
		Command: gwconfig.CommandConfig{Port: 9701},
		Logging: gwconfig.LoggingConfig{Level: "INFO"},
	}
}

func enabledDisabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func printFinalStats(gw *gateway.Gateway) {
	g := gw.Stats().GlobalSnapshot()
	fmt.Println()
	fmt.Println("=== Final Statistics ===")
	fmt.Printf("Frames received: %d\n", g.RxTotal)
	fmt.Printf("Malformed:       %d\n", g.MalformedTotal)
	fmt.Printf("CRC failures:    %d\n", g.CrcFailTotal)
	fmt.Printf("Sequence gaps:   %d\n", g.GapTotal)
	fmt.Printf("Reorders:        %d\n", g.ReorderTotal)
	fmt.Printf("Duplicates:      %d\n", g.DuplicateTotal)
}

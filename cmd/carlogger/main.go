package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"obd-mqtt-logger/internal/config"
	"obd-mqtt-logger/internal/logger"
	"obd-mqtt-logger/internal/metrics"
	"obd-mqtt-logger/internal/mqtt"
	"obd-mqtt-logger/internal/obd"
	"obd-mqtt-logger/internal/obd/sim"
	"obd-mqtt-logger/internal/producer"
	"obd-mqtt-logger/internal/record"
	"obd-mqtt-logger/internal/storage"
)

// options holds the parsed command line
type options struct {
	logfile        string
	forceOverwrite bool
	device         string
	configPath     string
	publish        bool
	debug          bool
	metricsPort    int
}

func parseArgs() (*options, error) {
	opts := &options{}
	flag.BoolVar(&opts.forceOverwrite, "f", false, "Overwrite the logfile if it already exists.")
	flag.StringVar(&opts.device, "device", "/dev/rfcomm99", "Path to the serial port-like device offering an interface to the car.")
	flag.StringVar(&opts.configPath, "config", "", "Path to a .yaml config file.")
	flag.BoolVar(&opts.publish, "publish", false, "Publish the collected data into cloud.")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug prints.")
	flag.IntVar(&opts.metricsPort, "metrics-port", 0, "Port for the /metrics endpoint (0 disables it).")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] logfile\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.logfile = flag.Arg(0)
	if opts.logfile == "" {
		return nil, fmt.Errorf("path to the logfile to be written is required")
	}
	return opts, nil
}

// connectDriver opens the instrument driver session.
// TODO: serial ELM327 backend; until then only the bench adapter is
// wired ("sim" as device path).
func connectDriver(ctx context.Context, device string) (obd.Driver, error) {
	if device == "sim" {
		return sim.Connect(ctx, device)
	}
	return nil, fmt.Errorf("no adapter backend for device %q", device)
}

func run() error {
	opts, err := parseArgs()
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.Logging.Level = logger.LogLevelDebug
	}
	logger.Init(&cfg.Logging)
	logger.LogDebug("Debug prints enabled")

	if opts.publish {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Interrupt is the controlled way of stopping logging
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := connectDriver(ctx, opts.device)
	if err != nil {
		return fmt.Errorf("could not connect to car via %s: %w", opts.device, err)
	}
	defer driver.Close()

	filter := record.NewFilter()
	codec := record.NewCodec()
	if cfg.CatalogPath != "" {
		loadedFilter, overrides, err := record.LoadCatalogConfig(cfg.CatalogPath)
		if err != nil {
			return err
		}
		filter = loadedFilter
		codec = record.NewCodecWithOverrides(overrides)
	}

	appendLog, err := storage.CreateAppendLog(opts.logfile, opts.forceOverwrite)
	if err != nil {
		return err
	}
	defer appendLog.Close()

	stats := metrics.NewMetrics()
	if opts.metricsPort > 0 {
		metrics.StartMetricsServer(stats, opts.metricsPort)
	}

	var gate producer.Gate
	if opts.publish {
		tracker := mqtt.NewStateTracker()
		client, err := mqtt.NewClient(&cfg.MQTT, tracker, "")
		if err != nil {
			return err
		}
		if err := client.Connect(); err != nil {
			return err
		}

		broker := fmt.Sprintf("%s:%d", cfg.MQTT.URL, cfg.MQTT.Port)
		deliveryGate := mqtt.NewDeliveryGate(tracker, client, broker, nil)

		pollInterval := time.Duration(cfg.MQTT.RetryDelay) * time.Millisecond
		if err := deliveryGate.WaitUntilLive(ctx, pollInterval); err != nil {
			return err
		}
		gate = deliveryGate
	}

	if opts.configPath != "" {
		err := config.Watch(opts.configPath, func(newCfg *config.Config) error {
			logger.SetLevel(newCfg.Logging.Level)
			return nil
		})
		if err != nil {
			logger.LogWarn("Config watch not started: %v", err)
		}
	}

	service := producer.NewService(
		driver, codec, filter, appendLog, gate,
		cfg.MQTT.ClientID, cfg.MQTT.Domain, stats, nil)

	if err := service.Run(ctx); err != nil {
		return err
	}
	logger.LogInfo("Successfully exited logger.")
	return nil
}

func main() {
	if err := run(); err != nil {
		logger.LogError("%v", err)
		os.Exit(1)
	}
}

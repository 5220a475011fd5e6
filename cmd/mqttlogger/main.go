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
	"obd-mqtt-logger/internal/consumer"
	"obd-mqtt-logger/internal/logger"
	"obd-mqtt-logger/internal/metrics"
	"obd-mqtt-logger/internal/mqtt"
	"obd-mqtt-logger/internal/storage"
)

func run() error {
	configPath := flag.String("config", "", "Path to a .yaml config file.")
	metricsPort := flag.Int("metrics-port", 0, "Port for the /metrics endpoint (0 disables it).")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateConsumer(); err != nil {
		return err
	}
	logger.Init(&cfg.Logging)
	logger.LogInfo("Running main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats := metrics.NewMetrics()

	tracker := mqtt.NewStateTracker()
	client, err := mqtt.NewClient(&cfg.MQTT, tracker, "_consumer")
	if err != nil {
		return err
	}
	if err := client.Connect(); err != nil {
		return err
	}
	subscriber := mqtt.NewSubscriber(client, stats)
	defer subscriber.Close()

	broker := fmt.Sprintf("%s:%d", cfg.MQTT.URL, cfg.MQTT.Port)
	gate := mqtt.NewDeliveryGate(tracker, client, broker, nil)
	pollInterval := time.Duration(cfg.MQTT.RetryDelay) * time.Millisecond
	if err := gate.WaitUntilLive(ctx, pollInterval); err != nil {
		return err
	}

	if err := subscriber.SubscribeAll(); err != nil {
		return err
	}

	appendLog, err := storage.OpenAppendLog(cfg.LogFilePath)
	if err != nil {
		return err
	}
	defer appendLog.Close()

	stats.SetBrokerStatus(tracker.IsConnected())
	if *metricsPort > 0 {
		metrics.StartMetricsServer(stats, *metricsPort)
	}

	store := storage.NewInfluxStore(&cfg.TSDB)
	service := consumer.NewService(subscriber.Messages(), appendLog, store, stats, nil)
	return service.Run(ctx)
}

func main() {
	if err := run(); err != nil {
		logger.LogError("%v", err)
		os.Exit(1)
	}
}

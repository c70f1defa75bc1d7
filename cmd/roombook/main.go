package main

import (
	"context"

	"roombook/internal/autosave"
	"roombook/internal/catalogue"
	"roombook/internal/events"
	"roombook/internal/events/websocket"
	"roombook/internal/reservations/handler"
	"roombook/internal/reservations/service"
	"roombook/internal/reservations/store"
	"roombook/internal/reservations/validator"
	"roombook/pkg/app"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
	"roombook/pkg/timeutil"
)

const ServiceName = "roombook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting room reservation service")

	rooms := loadCatalogue(cfg)
	reservations := store.New(rooms, validator.NewReservationValidator(timeutil.RealClock{}))

	feedCtx, stopFeed := context.WithCancel(context.Background())
	hub := websocket.NewHub(cfg.Log)
	go hub.Run(feedCtx)

	emitter := events.NewEmitter(initPublishers(cfg, hub), cfg.EventsPublishTimeout, cfg.Log)
	reservationService := service.NewReservationService(reservations, emitter, cfg.Log)

	autoSave := autosave.New(autosave.Config{
		Path:            cfg.AutoSaveFile,
		Interval:        cfg.AutoSaveInterval,
		ShutdownTimeout: cfg.AutoSaveShutdownTimeout,
	}, reservations, cfg.Log)
	autoSave.OnSaved(reservationService.AutoSaved)
	if err := autoSave.Start(); err != nil {
		cfg.Log.Fatal("Failed to start auto-save", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(reservationService, cfg.Log),
		handler.NewReservationHandler(reservationService, validator.NewRequestValidator(cfg.Log), cfg.Log),
		websocket.NewHandler(hub),
	)
	serverApp.OnShutdown("autosave", func() error {
		autoSave.Stop()
		return nil
	})
	serverApp.OnShutdown("events", emitter.Close)
	serverApp.OnShutdown("websocket", func() error {
		stopFeed()
		return nil
	})
	serverApp.Run()
}

// loadCatalogue never fails startup: a broken rooms file leaves the service
// running with no rooms.
func loadCatalogue(cfg *config.Config) *catalogue.Catalogue {
	rooms, err := catalogue.Load(cfg.RoomsFile, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to load rooms, continuing with an empty catalogue",
			"path", cfg.RoomsFile,
			"error", err,
		)
		return catalogue.Empty()
	}
	return rooms
}

func initPublishers(cfg *config.Config, hub *websocket.Hub) events.Publisher {
	publishers := events.Multi{websocket.NewBroadcaster(hub)}

	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka publishing disabled, no brokers configured")
		return publishers
	}
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Kafka publishing enabled", "topic", producer.Topic(), "brokers", kafkaCfg.Brokers)
	return append(publishers, events.NewKafkaPublisher(producer))
}

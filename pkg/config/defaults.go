package config

import "time"

const (
	DefaultRoomsFile = "config/rooms.txt"

	DefaultAutoSaveFile            = "autosave.resv"
	DefaultAutoSaveInterval        = 1 * time.Minute
	DefaultAutoSaveShutdownTimeout = 60 * time.Second
	MinAutoSaveInterval            = 1 * time.Second

	DefaultHost     = "127.0.0.1"
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEventsPublishTimeout = 5 * time.Second
	DefaultKafkaTopic           = "roombook.reservations"
)

package config

const (
	EnvRoomsFile = "ROOMS_FILE"

	EnvAutoSaveFile            = "AUTOSAVE_FILE"
	EnvAutoSaveInterval        = "AUTOSAVE_INTERVAL"
	EnvAutoSaveShutdownTimeout = "AUTOSAVE_SHUTDOWN_TIMEOUT"

	EnvHost     = "HOST"
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvEventsPublishTimeout = "EVENTS_PUBLISH_TIMEOUT"
	EnvKafkaTopic           = "KAFKA_TOPIC"
)

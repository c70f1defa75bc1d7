package kafka_config

import "testing"

func TestLoad_DisabledWithoutBrokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg := Load()
	if cfg.Enabled() {
		t.Fatalf("expected publishing to be disabled, brokers = %v", cfg.Brokers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should validate, got %v", err)
	}
}

func TestLoad_Brokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaProducerCompression, "lz4")

	cfg := Load()
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != "lz4" {
		t.Errorf("compression = %s, want lz4", cfg.ProducerCompression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Brokers:              []string{"localhost:9092"},
		ProducerMaxAttempts:  0,
		ProducerBatchTimeout: 0,
		ProducerRequireAcks:  2,
		ProducerCompression:  "brotli",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

package config

import (
	"fmt"
	"strings"

	"salesdash/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateDataSource(cfg.DataSource, cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateSummary(cfg.Summary); err != nil {
		errors = append(errors, err)
	}

	if err := validateAlerts(cfg.Alerts); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateDataSource(cfg DataSourceConfig, db DatabaseConfig) error {
	switch cfg.Type {
	case "", constants.DataSourceSample:
		return nil
	case constants.DataSourceFile:
		if cfg.Path == "" {
			return &ValidationError{
				Field:   "data_source.path",
				Message: "path is required for the file data source",
			}
		}
	case constants.DataSourcePostgres:
		if db.Postgres.Host == "" {
			return &ValidationError{
				Field:   "database.postgres.host",
				Message: "PostgreSQL host is required for the postgres data source",
			}
		}
	case constants.DataSourceMongoDB:
		if db.MongoDB.URI == "" {
			return &ValidationError{
				Field:   "database.mongodb.uri",
				Message: "MongoDB URI is required for the mongodb data source",
			}
		}
	default:
		return &ValidationError{
			Field:   "data_source.type",
			Message: fmt.Sprintf("unknown data source: %s (supported: sample, file, postgres, mongodb)", cfg.Type),
		}
	}
	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return nil
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.AlertTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.alert_topic",
			Message: "alert topic is required",
		}
	}

	if cfg.Retry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.Retry.MaxInterval > 0 && cfg.Retry.InitialInterval > 0 && cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Retry.Multiplier <= 0 {
		return &ValidationError{
			Field:   "broker.kafka.retry.multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	if cfg.MongoDB.URI != "" {
		if err := validateMongoDB(cfg.MongoDB); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	return nil
}

func validateSummary(cfg SummaryConfig) error {
	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   "summary.timeout",
			Message: "timeout must be non-negative",
		}
	}

	if cfg.CacheTTLSeconds < 0 {
		return &ValidationError{
			Field:   "summary.cache_ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	return nil
}

func validateAlerts(cfg AlertsConfig) error {
	for i, r := range cfg.Rules {
		if r.Field == "" || r.Operator == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("alerts.rules[%d]", i),
				Message: "field and operator are required",
			}
		}
	}

	validSeverities := map[string]bool{"success": true, "warning": true, "error": true}
	for i, r := range cfg.SeverityRules {
		if r.Expression == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("alerts.severity_rules[%d].expression", i),
				Message: "expression is required",
			}
		}
		if !validSeverities[r.Severity] {
			return &ValidationError{
				Field:   fmt.Sprintf("alerts.severity_rules[%d].severity", i),
				Message: fmt.Sprintf("invalid severity: %s (valid: success, warning, error)", r.Severity),
			}
		}
	}

	return nil
}

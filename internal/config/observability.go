package config

// TelemetryConfig holds trace export configuration.
//
// Spans produced by Genkit flows and generation calls are exported over
// OTLP HTTP to a local collector, which handles authentication, buffering,
// and forwarding. See internal/observability for the wiring.
type TelemetryConfig struct {
	// CollectorHost is the OTLP HTTP endpoint (default: localhost:4318)
	CollectorHost string `mapstructure:"collector_host"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment"`
	// ServiceName is the service name in traces (default: climbcoach-functions)
	ServiceName string `mapstructure:"service_name"`
}

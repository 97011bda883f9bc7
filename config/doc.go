// Package config provides configuration loading and validation for livestow.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (LIVESTOW_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with LIVESTOW_ prefix:
//   - server.port → LIVESTOW_SERVER_PORT
//   - store.stale_timeout → LIVESTOW_STORE_STALE_TIMEOUT
//   - metrics.enabled → LIVESTOW_METRICS_ENABLED
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: host, port and shutdown_timeout
//   - Store: stale_timeout and chunk_size for the live buffers
//   - CORS: cross-origin resource sharing settings (any origin by default)
//   - Metrics: optional Prometheus listener on its own port
//   - Log: level and format (text or json)
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Ports must be 1-65535
//   - stale_timeout must be positive and chunk_size at least 1
//   - Log level must be debug, info, warn, or error
//   - The metrics listener may not share the server address
package config

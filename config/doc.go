// Package config provides configuration loading and validation for folio.
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
//  3. Environment variables (FOLIO_ prefix), including a .env file in the
//     working directory for variables not already set
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
// All config keys map to environment variables with FOLIO_ prefix:
//   - server.port → FOLIO_SERVER_PORT
//   - database.dsn → FOLIO_DATABASE_DSN
//   - session.secret → FOLIO_SESSION_SECRET
//   - storage.s3.secret_key → FOLIO_STORAGE_S3_SECRET_KEY
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535 and public_url a URL
//   - Database type must be sqlite or postgres, with valid distinct table names
//   - Storage type must be filesystem (path required) or s3 (endpoint,
//     bucket and public_base required)
//   - Session secret, when set, must be at least 32 bytes
//   - Log level must be debug, info, warn, or error
package config

// Package config loads and validates the application configuration from
// environment variables (LINGO_ prefix) layered over an optional YAML file.
// Environment variables always win. Defaults are suitable for local
// development except for the external service credentials, which have no
// sensible defaults and must be supplied.
package config

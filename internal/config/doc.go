// Package config handles configuration loading, parsing, and validation
// from config files, environment variables and an optional .env file. It
// provides type-safe access to the settings needed by the server while keeping
// configuration details separate from business logic.
package config

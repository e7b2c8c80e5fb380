// Package config provides centralized configuration management for the
// AgentFlow runtime. Configuration is loaded once at startup from a JSON
// file, with defaults applied relative to the file's directory, and typed
// accessors for downstream services.
package config

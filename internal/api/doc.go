// Package api exposes the HTTP surface of the orchestration engine:
// synchronous chat, asynchronous job submission and lookup, the tool
// catalog, health checks, and Prometheus metrics.
package api

// Package llm contains adapters for invoking large language models. It
// abstracts away provider-specific APIs behind a single completion contract
// and supports ordered failover across multiple providers.
package llm

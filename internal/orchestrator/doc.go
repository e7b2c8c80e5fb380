// Package orchestrator contains the core engine responsible for translating
// natural-language requests into executable tool workflows. It coordinates
// the off-topic pre-filter, context windowing, plan synthesis with
// deterministic fallback, execution graph construction, and step result
// aggregation.
package orchestrator

// Package agent implements the request-handling agents built on the tool
// registry and memory service. The MainAgent runs the per-turn state
// machine: record the user message, route the input to a deterministically
// matched tool or the model fallback, record the outcome, respond. The
// specialized constructors bind that machine to restricted tool subsets
// for the orchestrator to dispatch between.
package agent

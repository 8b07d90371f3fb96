// Package core provides the foundational domain types, interfaces and
// execution contexts used by Attache. It defines the core abstractions for:
//
//   - Messages (immutable conversation records with role, content, timestamp)
//   - Sessions (per-conversation ordered message logs with their own locking)
//   - ToolResults (ephemeral, status-tagged tool outcomes)
//   - Agents (units of request handling bound to a tool subset)
//   - TurnContext (scoped execution state for a single request/response turn)
//   - Pluggable stores for session logs and the long-term memory bank
//
// The package intentionally keeps implementation concerns (persistence,
// orchestration, concrete agents and tools) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core

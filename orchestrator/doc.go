// Package orchestrator routes incoming requests to exactly one agent.
// A keyword classifier scores the input against an ordered rule table
// and picks the category; the orchestrator dispatches to the agent
// registered for that category, falling back to the general agent when
// nothing scores. Dispatch recovers panics, so a misbehaving agent
// degrades to an error response instead of taking the process down.
package orchestrator

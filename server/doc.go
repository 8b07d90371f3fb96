// Package server exposes the orchestrator over an HTTP JSON API:
// ask/chat endpoints in front of the routing pipeline, direct agent and
// tool dispatch, session history and compaction, and long-term memory
// access. Tool failures travel inside 200 responses as error results;
// only transport and lookup failures map to HTTP error codes.
package server

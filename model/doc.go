// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside Attache.
//
// Core goals:
//   - Keep the contract to a single request/response call (Complete)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agents, tools) remain decoupled from vendor SDKs.
package model

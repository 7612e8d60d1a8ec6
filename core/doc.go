// Package core provides the foundational domain types shared across
// PromptRelay. It defines the core abstractions for:
//
//   - Requests (a user message plus optional agent / provider hints)
//   - Responses (the normalized outcome of exactly one routing attempt)
//   - Statuses (the enumerated outcome tag attached to every response)
//   - Exchanges (persisted request/response pairs for context recall)
//
// The package intentionally keeps implementation concerns (provider
// adapters, HTTP transport, persistence) out of scope, exposing small
// value types so higher layers remain decoupled from vendor SDKs.
package core

// Package provider defines the backend-agnostic abstraction for invoking
// language model providers inside PromptRelay.
//
// Core goals:
//   - Unify API-backed and subprocess-backed generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockProvider)
//
// Backends (e.g. Anthropic, OpenAI-compatible servers, local CLI tools)
// implement the Provider interface from this package so the router remains
// decoupled from vendor SDKs.
package provider

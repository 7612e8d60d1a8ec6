// Package agent maintains the roster of answering personas and decides
// which one should handle an incoming message.
//
// Detection is a small decision table: an explicitly requested agent wins
// when it exists, otherwise the message is scanned for per-agent trigger
// keywords in registration order, falling back to the default agent when
// nothing matches. The selected agent contributes the system instruction
// sent to the provider backend.
package agent

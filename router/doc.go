// Package router maps each request to exactly one backend invocation
// attempt, bounded by a provider-specific timeout, and always yields a
// well-formed response.
//
// The contract, in order:
//
//   - empty message text is rejected before any backend is touched
//   - an unknown provider override is rejected the same way
//   - the resolved provider gets a single attempt, raced against its
//     timeout; cancellation kills the underlying subprocess or call
//   - success maps to status "ok"; a missed deadline to "timeout";
//     backend failure or empty output to "error"; the message is
//     replaced by a user-safe fallback string in every non-ok branch
//   - no automatic retries; callers resubmit if they want another try
//
// Raw backend errors are logged, never surfaced to callers.
package router

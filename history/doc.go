// Package history persists request/response exchanges so recent
// conversation context can be recalled and attached to later requests.
//
// Two Store implementations are provided: a volatile in-memory ring for
// tests and ephemeral demo servers, and a file-backed store writing one
// JSON document per exchange into a context directory. Persistence is
// best-effort by contract: a failing store must never abort the response
// path, so callers log append errors and move on.
package history

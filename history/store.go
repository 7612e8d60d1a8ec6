package history

import "github.com/promptrelay/promptrelay/core"

// Store persists exchanges and recalls the most recent ones.
type Store interface {
	// Append records one completed exchange.
	Append(ex core.Exchange) error
	// Recent returns up to n exchanges, newest first.
	Recent(n int) ([]core.Exchange, error)
}

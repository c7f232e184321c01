package agents

import "fmt"

// keyOf builds a stable, sortable row key for an auto_inc-style id, shared
// by every agent's own state table in this package.
func keyOf(prefix string, id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%020d", prefix, id))
}

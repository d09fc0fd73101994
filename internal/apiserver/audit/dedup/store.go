package dedup

import (
	"context"
	"strings"
)

// Store suppresses repeated audit entries. Seen marks the (actor, action,
// module) tuple and reports whether it was already marked within the
// configured window.
type Store interface {
	// Seen returns true when the same tuple was recorded inside the
	// dedup window. Marking and checking happen atomically.
	Seen(ctx context.Context, actorID, action, module string) (bool, error)
	Close() error
}

func key(actorID, action, module string) string {
	return strings.Join([]string{actorID, action, module}, "|")
}

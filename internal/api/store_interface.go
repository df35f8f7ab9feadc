package api

import (
	"github.com/soaringjerry/Disha/internal/services"
)

// Store is everything the HTTP layer persists: quiz sessions and the admin
// audit trail. The memory store and the SQLite store both satisfy it.
type Store interface {
	services.SessionStore
	services.AuditStore
}

var _ Store = (*MemoryStore)(nil)

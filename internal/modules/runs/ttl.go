package runs

import "time"

// Retention defaults. expires_at = created_at + ttl.
const (
	DefaultTTL             = time.Hour
	DefaultCleanupSchedule = "@every 10m"
	DefaultListLimit       = 50
	MaxListLimit           = 500
)

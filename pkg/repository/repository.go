// Package repository defines the persistence capability injected into the
// bank service and the snapshot wire model shared by all storage backends.
// Persistence is a full-state overwrite after each mutating operation, not an
// incremental log.
package repository

// Repository loads and saves whole-bank snapshots. Implementations live under
// infra (JSON file, Postgres, in-memory for tests) and are interchangeable.
type Repository interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

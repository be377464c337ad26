package metrics

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for metrics data storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one thermal evaluation cycle as recorded
type Snapshot struct {
	Timestamp        time.Time
	SessionID        string
	ThermalLevel     int
	UserProfile      string
	EffectiveProfile string
	Monitoring       bool
}

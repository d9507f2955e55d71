package store

import (
	"context"
	"time"

	"github.com/sitescout/sitescout/internal/model"
)

// Store defines the local persistence used by the toolkit: page snapshots
// for change detection, uptime check history, and scored leads.
type Store interface {
	// Snapshots
	GetSnapshot(ctx context.Context, url string) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error)
	PruneSnapshots(ctx context.Context, olderThan time.Duration) (int, error)

	// Uptime checks
	SaveCheck(ctx context.Context, check model.Check) error
	ListChecks(ctx context.Context, url string, limit int) ([]model.Check, error)

	// Leads
	UpsertLead(ctx context.Context, lead model.Lead) error
	ListLeads(ctx context.Context, limit int) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "store: not found" }

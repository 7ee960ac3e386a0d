package ports

import (
	"context"

	"github.com/aretw0/ladon/pkg/domain"
)

// ResultStore persists automation results so that finished runs can be listed
// and inspected after the process that produced them exits.
type ResultStore interface {
	// Save persists the snapshot under the given run ID, replacing any previous one.
	Save(ctx context.Context, runID string, result *domain.ResultSnapshot) error

	// Load retrieves the snapshot for a run ID.
	// Returns domain.ErrResultNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.ResultSnapshot, error)

	// Delete removes the snapshot for a run ID. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of the stored runs.
	List(ctx context.Context) ([]string, error)
}

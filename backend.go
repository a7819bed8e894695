package jobboard

import (
	"context"
	"fmt"
)

// Backend represents the interface for job record storage backends.
// Implementations must be thread-safe so a save can run off the simulation
// goroutine.
type Backend interface {
	// SaveJobs inserts or replaces records by id in a single batch
	SaveJobs(ctx context.Context, records []*JobRecord) error

	// DeleteJobs deletes records by id. Unknown ids are ignored
	DeleteJobs(ctx context.Context, jobIDs []uint) error

	// LoadJobs returns every stored record, sorted by id
	LoadJobs(ctx context.Context) ([]*JobRecord, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)

	// Close closes the backend connection
	Close() error
}

func normalizeContext(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func validateRecords(records []*JobRecord) error {
	seen := make(map[uint]struct{}, len(records))
	for idx, rec := range records {
		if rec == nil {
			return fmt.Errorf("record at index %d is nil", idx)
		}
		if rec.ID == 0 {
			return fmt.Errorf("record at index %d is missing ID", idx)
		}
		if _, exists := seen[rec.ID]; exists {
			return fmt.Errorf("duplicate job ID %d in batch", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	return nil
}

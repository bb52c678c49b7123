package importer

import (
	"context"
	"fmt"

	"github.com/abhisek/capitals/internal/store"
)

// Inserter persists state records. *store.Store satisfies it.
type Inserter interface {
	InsertState(ctx context.Context, rec store.StateRecord) (int, error)
}

// Import parses src and inserts every record through ins. Parsing completes
// before the first insert, so a malformed file writes nothing. It returns
// the number of records inserted.
func Import(ctx context.Context, ins Inserter, src Source) (int, error) {
	rc, err := src()
	if err != nil {
		return 0, fmt.Errorf("open import source: %w", err)
	}
	defer rc.Close()

	records, err := Parse(rc)
	if err != nil {
		return 0, err
	}

	for i, rec := range records {
		if _, err := ins.InsertState(ctx, rec); err != nil {
			return i, fmt.Errorf("insert %s: %w", rec.StateName, err)
		}
	}
	return len(records), nil
}

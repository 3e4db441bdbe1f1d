package source

import (
    "context"

    "macroagg/internal/dataset"
    "macroagg/internal/table"
)

// Source fetches one series by identifier and returns its raw table.
// Implementations never return a partially populated table: on error the
// table is nil.
type Source interface {
    Kind() dataset.SourceKind
    Fetch(ctx context.Context, identifier string) (*table.Table, error)
}

// Package export writes the wide table to its sinks.
package export

import (
	"context"
	"os"
	"path/filepath"

	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

// Sink consumes the finished wide table.
type Sink interface {
	Name() string
	Write(ctx context.Context, t *table.Table) error
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return etlerr.NewIOError(dir, err)
	}
	return nil
}

func ensureParent(path string) error {
	return ensureDir(filepath.Dir(path))
}

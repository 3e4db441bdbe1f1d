// Package extract fetches every registry dataset concurrently and collects
// the raw tables by name.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/metrics"
	"macroagg/internal/source"
	"macroagg/internal/table"
)

// Policy decides what one failed fetch does to the run.
type Policy int

const (
	// FailFast cancels the remaining fetches and fails the run.
	FailFast Policy = iota
	// Isolate records the failure and keeps going.
	Isolate
)

const stage = "extract"

// Failure is a dataset that could not be fetched under Isolate.
type Failure struct {
	Dataset string
	Err     error
}

// Result holds the raw tables keyed by dataset name.
type Result struct {
	order    []dataset.Descriptor
	byName   map[string]dataset.Dataset
	Failures []Failure
}

// Get returns the raw dataset fetched for name.
func (r *Result) Get(name string) (dataset.Dataset, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Ordered returns the fetched datasets in descriptor order, skipping the
// ones that failed.
func (r *Result) Ordered() []dataset.Dataset {
	out := make([]dataset.Dataset, 0, len(r.byName))
	for _, d := range r.order {
		if ds, ok := r.byName[d.Name]; ok {
			out = append(out, ds)
		}
	}
	return out
}

// Orchestrator dispatches descriptors to sources by kind.
type Orchestrator struct {
	Sources map[dataset.SourceKind]source.Source
	Policy  Policy
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Run fetches every descriptor in its own goroutine and waits for all of
// them.
func (o *Orchestrator) Run(ctx context.Context, descs []dataset.Descriptor) (*Result, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := o.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}

	res := &Result{order: descs, byName: make(map[string]dataset.Dataset, len(descs))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range descs {
		g.Go(func() error {
			start := time.Now()
			log.Debug("fetch start", "dataset", d.Name, "kind", d.Kind.String(), "identifier", d.Identifier)

			t, err := o.fetch(gctx, d)
			dur := time.Since(start)
			rec.ObserveFetch(d.Name, dur, err)
			if err != nil {
				err = etlerr.NewDatasetError(d.Name, stage, err)
				rec.IncError(etlerr.Kind(err), stage)
				if o.Policy == Isolate {
					log.Warn("fetch failed, continuing", "dataset", d.Name, "kind", etlerr.Kind(err), "error", err)
					mu.Lock()
					res.Failures = append(res.Failures, Failure{Dataset: d.Name, Err: err})
					mu.Unlock()
					return nil
				}
				return err
			}

			log.Info("fetch done", "dataset", d.Name, "rows", t.Len(), "duration", dur)
			rec.SetRows(stage, d.Name, t.Len())
			mu.Lock()
			res.byName[d.Name] = dataset.Dataset{Descriptor: d, Table: t}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) fetch(ctx context.Context, d dataset.Descriptor) (t *table.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("panic in %s source: %v", d.Kind, r)
		}
	}()
	src, ok := o.Sources[d.Kind]
	if !ok || src == nil {
		return nil, etlerr.NewConfigError("source for kind " + d.Kind.String())
	}
	t, err = src.Fetch(ctx, d.Identifier)
	if err == nil && t == nil {
		err = etlerr.NewFormatError("%s source returned no table", d.Kind)
	}
	return t, err
}

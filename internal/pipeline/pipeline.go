// Package pipeline runs one aggregation end to end: extract, normalize,
// unify, convert, join and project onto the output columns.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"macroagg/internal/aggregate"
	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/extract"
	"macroagg/internal/metrics"
	"macroagg/internal/table"
)

// Pipeline wires the stages together. Every stage is fail-fast.
type Pipeline struct {
	Registry     []dataset.Descriptor
	Orchestrator *extract.Orchestrator
	// Workers bounds the normalization map. <= 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Run produces the wide table in output column order.
func (p *Pipeline) Run(ctx context.Context) (*table.Table, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := p.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}
	reg := p.Registry
	if reg == nil {
		reg = dataset.Registry()
	}

	var raw *extract.Result
	err := p.stage(ctx, log, rec, "extract", func() (err error) {
		raw, err = p.Orchestrator.Run(ctx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(raw.Failures) > 0 {
		f := raw.Failures[0]
		return nil, etlerr.NewDatasetError(f.Dataset, "extract", f.Err)
	}
	datasets := raw.Ordered()

	err = p.stage(ctx, log, rec, "normalize", func() (err error) {
		datasets, err = aggregate.NormalizeAll(ctx, datasets, p.Workers)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, d := range datasets {
		rec.SetRows("normalize", d.Name(), d.Table.Len())
	}

	err = p.stage(ctx, log, rec, "unify", func() (err error) {
		datasets, err = aggregate.Unifier{Rules: dataset.RenameRules(reg)}.ApplyAll(datasets)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, log, rec, "convert", func() (err error) {
		datasets, err = aggregate.Convert(datasets, dataset.FXRates)
		return err
	})
	if err != nil {
		return nil, err
	}

	var wide *table.Table
	err = p.stage(ctx, log, rec, "join", func() (err error) {
		wide, err = aggregate.JoinAll(datasets)
		if err != nil {
			return err
		}
		wide, err = Project(wide, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	rec.SetRows("join", "all", wide.Len())
	log.Info("pipeline done", "rows", wide.Len(), "columns", wide.Width())
	return wide, nil
}

func (p *Pipeline) stage(ctx context.Context, log *slog.Logger, rec metrics.Recorder, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	dur := time.Since(start)
	rec.ObserveStage(name, dur)
	if err != nil {
		rec.IncError(etlerr.Kind(err), name)
		log.Error("stage failed", "stage", name, "kind", etlerr.Kind(err), "error", err)
		return err
	}
	log.Info("stage done", "stage", name, "duration", dur)
	return nil
}

// Project renames each descriptor's joined column to its output name and
// orders the columns as the registry lists them, quarter first.
func Project(wide *table.Table, reg []dataset.Descriptor) (*table.Table, error) {
	cols := make([]string, 0, len(reg)+1)
	cols = append(cols, dataset.QuarterColumn)
	var err error
	for _, d := range reg {
		from := d.JoinedColumn()
		if wide.Index(from) < 0 {
			return nil, etlerr.NewJoinError("joined table has no column %q for %s", from, d.Name)
		}
		if wide, err = wide.Rename(from, d.Output); err != nil {
			return nil, err
		}
		cols = append(cols, d.Output)
	}
	return wide.Select(orderLike(cols, dataset.OutputColumns())...)
}

// orderLike sorts cols by their position in contract; names the contract
// does not know keep their relative order at the end.
func orderLike(cols, contract []string) []string {
	pos := make(map[string]int, len(contract))
	for i, c := range contract {
		pos[c] = i
	}
	var known, extra []string
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
		if _, ok := pos[c]; !ok {
			extra = append(extra, c)
		}
	}
	for _, c := range contract {
		if present[c] {
			known = append(known, c)
		}
	}
	return append(known, extra...)
}

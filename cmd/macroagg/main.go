package main

import (
    "context"
    "errors"
    "log/slog"
    "os"
    "os/signal"
    "syscall"
    "time"

    "macroagg/internal/config"
    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/export"
    "macroagg/internal/extract"
    "macroagg/internal/logging"
    "macroagg/internal/metrics"
    "macroagg/internal/pipeline"
    "macroagg/internal/source/sources"
)

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        slog.Error("config", "error", err)
        os.Exit(1)
    }
    log, _ := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    if err := run(ctx, cfg, log); err != nil {
        var de *etlerr.DatasetError
        attrs := []any{"kind", etlerr.Kind(err), "error", err}
        if errors.As(err, &de) {
            attrs = append(attrs, "dataset", de.Dataset, "stage", de.Stage)
        }
        log.Error("run failed", attrs...)
        stop()
        os.Exit(1)
    }
    log.Info("run complete")
}

// run executes one aggregation and writes every configured sink. Nothing
// is written unless the whole pipeline succeeds.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
    if err := cfg.RequireAPIKey(); err != nil {
        return err
    }
    if d := cfg.Pipeline.Timeout(); d > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, d)
        defer cancel()
    }

    rec := metrics.NewPrometheus()
    if cfg.Metrics.TextfilePath != "" {
        defer func() {
            if err := rec.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
                log.Warn("metrics textfile", "path", cfg.Metrics.TextfilePath, "error", err)
            }
        }()
    }

    reg := dataset.Registry()
    set, err := sources.FromConfig(cfg, reg)
    if err != nil {
        return err
    }
    defer set.Close()

    policy := extract.FailFast
    if cfg.Pipeline.Policy == "isolate" {
        policy = extract.Isolate
    }
    p := &pipeline.Pipeline{
        Registry: reg,
        Orchestrator: &extract.Orchestrator{
            Sources: set.ByKind,
            Policy:  policy,
            Logger:  log,
            Metrics: rec,
        },
        Workers: cfg.Pipeline.Workers,
        Logger:  log,
        Metrics: rec,
    }
    wide, err := p.Run(ctx)
    if err != nil {
        return err
    }

    for _, s := range sinks(cfg) {
        start := time.Now()
        if err := s.Write(ctx, wide); err != nil {
            rec.IncError(etlerr.Kind(err), "export")
            return etlerr.NewDatasetError("result", "export:"+s.Name(), err)
        }
        log.Info("sink written", "sink", s.Name(), "rows", wide.Len(), "duration", time.Since(start))
    }
    return nil
}

func sinks(cfg config.Config) []export.Sink {
    var out []export.Sink
    if cfg.Output.CSVPath != "" {
        out = append(out, export.CSVWriter{Path: cfg.Output.CSVPath})
    }
    if cfg.Output.ParquetPath != "" {
        out = append(out, export.ParquetWriter{Path: cfg.Output.ParquetPath})
    }
    if cfg.Output.XLSXPath != "" {
        out = append(out, export.XLSXWriter{Path: cfg.Output.XLSXPath, Sheet: cfg.Output.XLSXSheet})
    }
    if cfg.Output.GraphDir != "" {
        out = append(out, export.ChartRenderer{Dir: cfg.Output.GraphDir})
    }
    return out
}

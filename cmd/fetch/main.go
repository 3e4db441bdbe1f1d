// Command fetch pulls raw datasets and prints a sample of each as JSON, for
// checking a source without running the whole aggregation.
//
// DATASETS selects datasets by name (comma-separated, default all) and
// SAMPLE_ROWS caps the printed rows per dataset. API_KEY is only needed when
// a FRED dataset is selected.
package main

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "strings"
    "time"

    "macroagg/internal/config"
    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/extract"
    "macroagg/internal/logging"
    "macroagg/internal/source/sources"
)

type sample struct {
    Dataset string     `json:"dataset"`
    Kind    string     `json:"kind"`
    Total   int        `json:"total_rows"`
    Columns []string   `json:"columns"`
    Rows    [][]string `json:"rows"`
}

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil { fmt.Fprintf(os.Stderr, "config: %v\n", err); os.Exit(1) }
    log, _ := logging.New(os.Stderr, cfg.Log.Level, "text")

    descs, err := selectDescriptors(splitCSV(getenv("DATASETS", "")))
    if err != nil { log.Error("datasets", "error", err); os.Exit(1) }
    set, err := sources.FromConfig(cfg, descs)
    if err != nil { log.Error("sources", "kind", etlerr.Kind(err), "error", err); os.Exit(1) }
    defer set.Close()

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(getenvInt("REQUEST_TIMEOUT_SEC", 60))*time.Second)
    defer cancel()

    o := &extract.Orchestrator{Sources: set.ByKind, Policy: extract.Isolate, Logger: log}
    res, err := o.Run(ctx, descs)
    if err != nil { log.Error("fetch", "error", err); os.Exit(1) }
    for _, f := range res.Failures {
        log.Error("fetch failed", "dataset", f.Dataset, "kind", etlerr.Kind(f.Err), "error", f.Err)
    }

    n := getenvInt("SAMPLE_ROWS", 10)
    out := make([]sample, 0, len(descs))
    for _, d := range res.Ordered() {
        out = append(out, sampleOf(d, n))
    }
    b, _ := json.MarshalIndent(out, "", "  ")
    fmt.Println(string(b))
    if len(res.Failures) > 0 { os.Exit(1) }
}

func selectDescriptors(names []string) ([]dataset.Descriptor, error) {
    if len(names) == 0 { return dataset.Registry(), nil }
    out := make([]dataset.Descriptor, 0, len(names))
    for _, name := range names {
        d, ok := dataset.Lookup(name)
        if !ok { return nil, fmt.Errorf("unknown dataset %q", name) }
        out = append(out, d)
    }
    return out, nil
}

func sampleOf(d dataset.Dataset, n int) sample {
    recs := d.Table.Records()
    if n >= 0 && len(recs) > n { recs = recs[:n] }
    return sample{
        Dataset: d.Name(),
        Kind:    d.Descriptor.Kind.String(),
        Total:   d.Table.Len(),
        Columns: d.Table.Columns(),
        Rows:    recs,
    }
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var x int
        _, _ = fmt.Sscanf(v, "%d", &x)
        if x != 0 { return x }
    }
    return def
}

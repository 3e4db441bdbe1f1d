package aggregate

import (
    "context"
    "fmt"
    "runtime"
    "sort"
    "strconv"
    "strings"
    "time"

    "golang.org/x/sync/errgroup"

    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/table"
)

// QuarterOf maps a month number (1-12) to its quarter (1-4). Out of range
// months yield 0.
func QuarterOf(month int) int {
    if month < 1 || month > 12 { return 0 }
    return (month-1)/3 + 1
}

// QuarterLabel renders t as "YYYY-Qq".
func QuarterLabel(t time.Time) string {
    return fmt.Sprintf("%d-Q%d", t.Year(), QuarterOf(int(t.Month())))
}

type quarterKey struct{ year, q int }

func (k quarterKey) String() string { return fmt.Sprintf("%d-Q%d", k.year, k.q) }

func parseQuarterLabel(s string) (quarterKey, bool) {
    y, q, ok := strings.Cut(strings.TrimSpace(s), "-Q")
    if !ok { return quarterKey{}, false }
    year, err := strconv.Atoi(y)
    if err != nil { return quarterKey{}, false }
    n, err := strconv.Atoi(q)
    if err != nil || n < 1 || n > 4 { return quarterKey{}, false }
    return quarterKey{year, n}, true
}

func quarterOfCell(v table.Value, layout string) (quarterKey, bool) {
    s, ok := v.Text()
    if !ok { return quarterKey{}, false }
    if layout == dataset.QuarterLayout { return parseQuarterLabel(s) }
    t, err := time.Parse(layout, strings.TrimSpace(s))
    if err != nil { return quarterKey{}, false }
    return quarterKey{t.Year(), QuarterOf(int(t.Month()))}, true
}

// Normalize averages a dataset's target column per calendar quarter.
// Datasets that do not ask for it pass through untouched. Rows with a
// missing or unparseable date are dropped, null targets are left out of
// the mean, and a quarter with no numeric target at all is omitted. The
// result is [quarter, alias] sorted by quarter.
func Normalize(d dataset.Dataset) (dataset.Dataset, error) {
    desc := d.Descriptor
    if !desc.RequiresQuarterlyAverage { return d, nil }
    q := desc.Quarterly
    if q == nil { return d, etlerr.NewFormatError("%s: quarterly averaging requested without quarterly settings", desc.Name) }
    if d.Table == nil { return d, etlerr.NewFormatError("%s: no table to normalize", desc.Name) }

    di := d.Table.Index(q.DateColumn)
    if di < 0 { return d, etlerr.NewFormatError("%s: date column %q not found", desc.Name, q.DateColumn) }
    ti := d.Table.Index(q.TargetColumn)
    if ti < 0 { return d, etlerr.NewFormatError("%s: target column %q not found", desc.Name, q.TargetColumn) }

    type acc struct{ sum float64; n int }
    groups := map[quarterKey]*acc{}
    for i := 0; i < d.Table.Len(); i++ {
        row := d.Table.Row(i)
        k, ok := quarterOfCell(row[di], q.DateLayout)
        if !ok { continue }
        f, ok, err := number(q.TargetColumn, row[ti])
        if err != nil { return d, err }
        if !ok { continue }
        a := groups[k]
        if a == nil { a = &acc{}; groups[k] = a }
        a.sum += f
        a.n++
    }

    keys := make([]quarterKey, 0, len(groups))
    for k := range groups { keys = append(keys, k) }
    sort.Slice(keys, func(i, j int) bool {
        if keys[i].year != keys[j].year { return keys[i].year < keys[j].year }
        return keys[i].q < keys[j].q
    })

    rows := make([][]table.Value, len(keys))
    for i, k := range keys {
        a := groups[k]
        rows[i] = []table.Value{table.Str(k.String()), table.Num(a.sum / float64(a.n))}
    }
    t, err := table.New([]string{dataset.QuarterColumn, q.OutputAlias}, rows)
    if err != nil { return d, err }
    return dataset.Dataset{Descriptor: desc, Table: t}, nil
}

// NormalizeAll runs Normalize over every dataset with at most workers in
// flight. Output order equals input order.
func NormalizeAll(ctx context.Context, in []dataset.Dataset, workers int) ([]dataset.Dataset, error) {
    if workers <= 0 { workers = runtime.GOMAXPROCS(0) }
    out := make([]dataset.Dataset, len(in))
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(workers)
    for i, d := range in {
        g.Go(func() error {
            if err := gctx.Err(); err != nil { return err }
            n, err := Normalize(d)
            if err != nil { return etlerr.NewDatasetError(d.Name(), "normalize", err) }
            out[i] = n
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }
    return out, nil
}

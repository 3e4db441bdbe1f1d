package aggregate

import (
    "macroagg/internal/dataset"
)

// Unifier renames each dataset's metric column to its canonical name.
type Unifier struct {
    // Rules maps dataset name to canonical metric name.
    Rules map[string]string
}

// Apply renames the single non-quarter column. Datasets without a rule pass
// through unchanged; tables that are not [quarter, <metric>] are rejected.
func (u Unifier) Apply(d dataset.Dataset) (dataset.Dataset, error) {
    metric, err := metricPair(d.Name(), d.Table)
    if err != nil { return d, err }
    to, ok := u.Rules[d.Name()]
    if !ok || to == metric { return d, nil }
    t, err := d.Table.Rename(metric, to)
    if err != nil { return d, err }
    return dataset.Dataset{Descriptor: d.Descriptor, Table: t}, nil
}

// ApplyAll unifies every dataset in order.
func (u Unifier) ApplyAll(in []dataset.Dataset) ([]dataset.Dataset, error) {
    out := make([]dataset.Dataset, len(in))
    for i, d := range in {
        n, err := u.Apply(d)
        if err != nil { return nil, err }
        out[i] = n
    }
    return out, nil
}

package ratelimit

import (
    "context"
    "time"

    "golang.org/x/time/rate"

    "macroagg/internal/dataset"
    "macroagg/internal/source"
    "macroagg/internal/table"
)

// Limited wraps a source and gates every Fetch on a token bucket. A nil
// limiter lets calls through unchanged.
type Limited struct {
    S source.Source
    L *rate.Limiter
}

// PerMinute builds a limiter allowing perMinute calls with the given burst.
// perMinute <= 0 disables limiting.
func PerMinute(perMinute, burst int) *rate.Limiter {
    if perMinute <= 0 { return nil }
    if burst <= 0 { burst = 1 }
    return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

func (l *Limited) Kind() dataset.SourceKind { return l.S.Kind() }

func (l *Limited) Fetch(ctx context.Context, identifier string) (*table.Table, error) {
    if l.L != nil {
        if err := l.L.Wait(ctx); err != nil { return nil, err }
    }
    return l.S.Fetch(ctx, identifier)
}

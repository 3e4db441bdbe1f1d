// Package sources builds the adapter for every source kind from config.
package sources

import (
	"macroagg/internal/config"
	"macroagg/internal/dataset"
	"macroagg/internal/httpx"
	"macroagg/internal/source"
	"macroagg/internal/source/csvfile"
	"macroagg/internal/source/ecb"
	"macroagg/internal/source/fred"
	"macroagg/internal/source/ratelimit"
)

// Set is the adapter per kind plus the file worker pool to release.
type Set struct {
	ByKind map[dataset.SourceKind]source.Source
	files  *csvfile.Source
}

// Close stops the file worker pool.
func (s *Set) Close() error {
	if s.files == nil {
		return nil
	}
	return s.files.Close()
}

// FromConfig wires the adapters for the kinds descs use; other kinds are
// left out of ByKind. Each HTTP adapter gets its own client and connection
// pool; the FRED adapter is rate limited.
func FromConfig(cfg config.Config, descs []dataset.Descriptor) (*Set, error) {
	set := &Set{ByKind: make(map[dataset.SourceKind]source.Source, 3)}
	for _, d := range descs {
		if _, done := set.ByKind[d.Kind]; done {
			continue
		}
		switch d.Kind {
		case dataset.JSONAPI:
			fc, err := fred.NewClient(cfg.APIKey,
				fred.WithBaseURL(cfg.FRED.BaseURL),
				fred.WithHTTPClient(httpx.New(cfg.FRED.Timeout())),
			)
			if err != nil {
				_ = set.Close()
				return nil, err
			}
			set.ByKind[d.Kind] = &ratelimit.Limited{S: fc, L: ratelimit.PerMinute(cfg.FRED.MaxRequestsPerMinute, cfg.FRED.Burst)}
		case dataset.XMLAPI:
			set.ByKind[d.Kind] = ecb.NewClient(
				ecb.WithBaseURL(cfg.ECB.BaseURL),
				ecb.WithHTTPClient(httpx.New(cfg.ECB.Timeout())),
			)
		case dataset.File:
			set.files = csvfile.New(csvfile.Config{Root: cfg.Files.Root, Workers: cfg.Files.Workers})
			set.ByKind[d.Kind] = set.files
		}
	}
	return set, nil
}

// Package csvfile reads header-having, comma-separated local files. Reads
// run on a small dedicated worker pool so that blocking file I/O never holds
// up the goroutines waiting on network sources.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

// Config controls the file source.
type Config struct {
	// Root resolves relative identifiers. Empty means the working directory.
	Root string
	// Workers is the size of the I/O pool. Defaults to 2 when <= 0.
	Workers int
}

type job struct {
	path string
	out  chan<- result
}

type result struct {
	t   *table.Table
	err error
}

// Source is the delimited-file adapter.
type Source struct {
	root string
	jobs chan job
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// New starts the worker pool. Call Close to stop it.
func New(cfg Config) *Source {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	s := &Source{
		root: cfg.Root,
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.work()
	}
	return s
}

func (s *Source) Kind() dataset.SourceKind { return dataset.File }

func (s *Source) work() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case j := <-s.jobs:
			t, err := ReadFile(j.path)
			j.out <- result{t: t, err: err}
		}
	}
}

// Fetch hands the read to the pool and waits for it or for ctx.
func (s *Source) Fetch(ctx context.Context, identifier string) (*table.Table, error) {
	path := identifier
	if s.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	out := make(chan result, 1)
	select {
	case s.jobs <- job{path: path, out: out}:
	case <-s.done:
		return nil, etlerr.NewIOError(path, errors.New("file source closed"))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-out:
		return r.t, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the workers after in-flight reads finish.
func (s *Source) Close() error {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

// ReadFile loads a CSV file into a table of String cells. Empty cells are
// Null.
func ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, etlerr.NewIOError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, etlerr.NewFormatError("%s: empty file, expected a header row", path)
	}
	if err != nil {
		return nil, readErr(path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	var rows [][]table.Value
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readErr(path, err)
		}
		row := make([]table.Value, len(rec))
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[i] = table.NullValue()
				continue
			}
			row[i] = table.Str(cell)
		}
		rows = append(rows, row)
	}
	return table.New(header, rows)
}

func readErr(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return etlerr.NewFormatError("%s: %v", path, pe)
	}
	return etlerr.NewIOError(path, err)
}

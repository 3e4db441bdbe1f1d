// Package etlerr defines the error kinds shared by every stage of the
// aggregation run. Callers inspect them with errors.As.
package etlerr

import (
	"fmt"
)

// NetworkError reports a failed HTTP exchange. Status is 0 when no response
// was received at all.
type NetworkError struct {
	Status int
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("network error: %s -> %d", e.URL, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func NewNetworkError(status int, url string, err error) *NetworkError {
	return &NetworkError{Status: status, URL: url, Err: err}
}

// ParseError reports a value that could not be decoded: a bad date, a bad
// number or a malformed payload.
type ParseError struct {
	Field string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: field %s: raw %q: %v", e.Field, e.Raw, e.Err)
	}
	return fmt.Sprintf("parse error: field %s: raw %q", e.Field, e.Raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(field, raw string, err error) *ParseError {
	return &ParseError{Field: field, Raw: raw, Err: err}
}

// FormatError reports a shape problem: inconsistent table rows, an
// unexpected column layout, or unpaired SDMX observation events.
type FormatError struct {
	Description string
}

func (e *FormatError) Error() string {
	return "format error: " + e.Description
}

func NewFormatError(format string, args ...any) *FormatError {
	return &FormatError{Description: fmt.Sprintf(format, args...)}
}

// IOError reports a local file that is missing or unreadable.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func NewIOError(path string, err error) *IOError {
	return &IOError{Path: path, Err: err}
}

// ConfigError reports a required configuration value that is absent.
type ConfigError struct {
	MissingKey string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: missing %s", e.MissingKey)
}

func NewConfigError(key string) *ConfigError {
	return &ConfigError{MissingKey: key}
}

// JoinError reports a join that cannot produce a usable wide table.
type JoinError struct {
	Reason string
}

func (e *JoinError) Error() string {
	return "join error: " + e.Reason
}

func NewJoinError(format string, args ...any) *JoinError {
	return &JoinError{Reason: fmt.Sprintf(format, args...)}
}

// DatasetError attaches the dataset and stage to an underlying error.
type DatasetError struct {
	Dataset string
	Stage   string
	Err     error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset %s: stage %s: %v", e.Dataset, e.Stage, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

func NewDatasetError(dataset, stage string, err error) *DatasetError {
	return &DatasetError{Dataset: dataset, Stage: stage, Err: err}
}

// Kind returns a short label for the first known error kind in err's chain.
// It is used for log attributes and metric labels.
func Kind(err error) string {
	for err != nil {
		switch err.(type) {
		case *NetworkError:
			return "network"
		case *ParseError:
			return "parse"
		case *FormatError:
			return "format"
		case *IOError:
			return "io"
		case *ConfigError:
			return "config"
		case *JoinError:
			return "join"
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return "unknown"
}

// Package datasource discovers, validates and loads sheets for sv. A sheet
// can come from a CSV file, a JSONL file or a table of a SQLite database.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// SourceType identifies the format of a data source.
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database (.db, .sqlite, .sqlite3)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeCSV is a CSV file with a header row
	SourceTypeCSV SourceType = "csv"
	// SourceTypeJSONL is a JSON lines file
	SourceTypeJSONL SourceType = "jsonl"
)

// Priority values for source types (higher = preferred when equally fresh)
const (
	PrioritySQLite = 100
	PriorityCSV    = 80
	PriorityJSONL  = 50
)

// ErrUnknownFormat is returned for a path whose extension is not recognized.
var ErrUnknownFormat = errors.New("unknown sheet format")

// ErrNoSources is returned when discovery finds nothing loadable.
var ErrNoSources = errors.New("no valid sources discovered")

// DataSource describes a file that can be loaded as a sheet.
type DataSource struct {
	// Type identifies the source format
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Table selects a SQLite table; empty means the first one
	Table string `json:"table,omitempty"`
	// Priority breaks ties between equally fresh sources
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// RowCount is the number of data rows (set during validation)
	RowCount int `json:"row_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, rows=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.RowCount, status)
}

// DetectType maps a file extension to a source type.
func DetectType(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return SourceTypeCSV, nil
	case ".jsonl", ".ndjson":
		return SourceTypeJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func priorityOf(t SourceType) int {
	switch t {
	case SourceTypeSQLite:
		return PrioritySQLite
	case SourceTypeCSV:
		return PriorityCSV
	default:
		return PriorityJSONL
	}
}

// NewSource stats path and returns its source description.
func NewSource(path, table string) (DataSource, error) {
	t, err := DetectType(path)
	if err != nil {
		return DataSource{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return DataSource{
		Type:     t,
		Path:     abs,
		Table:    table,
		Priority: priorityOf(t),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory scanned for sheets (cwd if empty)
	Dir string
	// ValidateAfterDiscovery loads each discovered source to check it
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Concurrency bounds parallel validation (default 4)
	Concurrency int
	// Logger receives progress messages when set
	Logger func(msg string)
}

// DiscoverSources finds every sheet file directly inside opts.Dir, sorted
// freshest first.
func DiscoverSources(ctx context.Context, opts DiscoveryOptions) ([]DataSource, error) {
	var logMu sync.Mutex
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			logMu.Lock()
			defer logMu.Unlock()
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := DetectType(e.Name()); err != nil {
			continue
		}
		s, err := NewSource(filepath.Join(dir, e.Name()), "")
		if err != nil {
			logf("Skipping %s: %v", e.Name(), err)
			continue
		}
		sources = append(sources, s)
		logf("Found %s: %s (mod=%s)", s.Type, s.Path, s.ModTime.Format(time.RFC3339))
	}

	if opts.ValidateAfterDiscovery {
		limit := opts.Concurrency
		if limit <= 0 {
			limit = 4
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i := range sources {
			g.Go(func() error {
				if err := ValidateSource(gctx, &sources[i]); err != nil {
					logf("Validation failed for %s: %v", sources[i].Path, err)
				}
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sortSources(sources)
	logf("Discovered %d sources", len(sources))
	return sources, nil
}

func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}

// ValidateSource loads s and records whether it is usable.
func ValidateSource(ctx context.Context, s *DataSource) error {
	sheet, err := LoadFromSource(ctx, *s)
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	if sheet.ColumnCount() == 0 {
		s.Valid = false
		s.ValidationError = "no columns"
		return fmt.Errorf("%s: no columns", s.Path)
	}
	s.Valid = true
	s.ValidationError = ""
	s.RowCount = sheet.RowCount()
	return nil
}

// SelectBestSource returns the freshest valid source.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	candidates := make([]DataSource, 0, len(sources))
	for _, s := range sources {
		if s.Valid {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return DataSource{}, ErrNoSources
	}
	sortSources(candidates)
	return candidates[0], nil
}

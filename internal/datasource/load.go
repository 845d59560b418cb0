package datasource

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/sheetview/pkg/debug"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

// LoadFromSource loads a sheet, dispatching on the source type.
func LoadFromSource(ctx context.Context, source DataSource) (*Sheet, error) {
	defer metrics.Timer(metrics.SheetLoad)()

	switch source.Type {
	case SourceTypeSQLite:
		reader, err := OpenSQLite(source.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadTable(ctx, source.Table)

	case SourceTypeCSV:
		return LoadCSV(source.Path)

	case SourceTypeJSONL:
		return LoadJSONL(source.Path, ParseOptions{
			WarningHandler: func(msg string) { debug.Log("%s: %s", source.Path, msg) },
		})

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, source.Type)
	}
}

// Load opens path (any supported format) as a sheet. When path is a
// directory, the freshest valid source inside it is loaded.
func Load(ctx context.Context, path, table string) (*Sheet, DataSource, error) {
	if isDir(path) {
		sources, err := DiscoverSources(ctx, DiscoveryOptions{
			Dir:                    path,
			ValidateAfterDiscovery: true,
		})
		if err != nil {
			return nil, DataSource{}, err
		}
		best, err := SelectBestSource(sources)
		if err != nil {
			return nil, DataSource{}, fmt.Errorf("%s: %w", path, err)
		}
		sheet, err := LoadFromSource(ctx, best)
		return sheet, best, err
	}

	source, err := NewSource(path, table)
	if err != nil {
		return nil, DataSource{}, err
	}
	sheet, err := LoadFromSource(ctx, source)
	return sheet, source, err
}

// Reloader coalesces concurrent reloads of the same source: callers that
// arrive while a load is running share its result.
type Reloader struct {
	group singleflight.Group
}

// Reload loads source, joining any in-flight load of the same path and table.
func (r *Reloader) Reload(ctx context.Context, source DataSource) (*Sheet, error) {
	key := source.Path + "\x00" + source.Table
	v, err, shared := r.group.Do(key, func() (any, error) {
		return LoadFromSource(ctx, source)
	})
	if shared {
		debug.Log("reload of %s shared with a concurrent caller", source.Path)
	}
	if err != nil {
		return nil, err
	}
	return v.(*Sheet), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/sheetview/internal/datasource"
	"github.com/vanderheijden86/sheetview/pkg/config"
	"github.com/vanderheijden86/sheetview/pkg/debug"
	"github.com/vanderheijden86/sheetview/pkg/export"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
	"github.com/vanderheijden86/sheetview/pkg/ui"
	"github.com/vanderheijden86/sheetview/pkg/version"
)

// Headless exports use the terminal size when there is one.
const (
	defaultWidth  = 120
	defaultHeight = 40
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Read config from this file instead of ~/.config/sv/config.yaml")
	columns := flag.Int("columns", 0, "Lay the sheet out in this many columns (0 = the sheet's own)")
	cellWidth := flag.Int("cell-width", 0, "Cell width in terminal columns")
	table := flag.String("table", "", "SQLite table to open (default: the first one)")
	exportPath := flag.String("export", "", "Write a snapshot of the first screen to path.svg or path.png and exit")
	exportWizard := flag.Bool("export-wizard", false, "Choose snapshot options interactively, write it and exit")
	noWatch := flag.Bool("no-watch", false, "Do not reload when the file changes")
	showMetrics := flag.Bool("metrics", false, "Print engine timings and cell reuse to stderr on exit")
	flag.Parse()

	if *showMetrics {
		defer func() {
			if err := metrics.Report(os.Stderr); err != nil {
				debug.Log("metrics report: %v", err)
			}
		}()
	}

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: sv [options] [file|dir]")
		fmt.Println("\nA terminal viewer for CSV, JSONL and SQLite sheets.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("sv %s\n", version.Version)
		os.Exit(0)
	}

	cfg, cfgPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *columns > 0 {
		cfg.Grid.Columns = *columns
	}
	if *cellWidth > 0 {
		cfg.Grid.CellWidth = *cellWidth
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	target := "."
	if flag.NArg() > 0 {
		target = flag.Arg(0)
	}
	sheet, source, err := openSheet(context.Background(), cfg, target, *table, flag.NArg() == 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sheet: %v\n", err)
		os.Exit(1)
	}

	// Remember the file; a config we cannot write is not worth failing over.
	cfg.AddRecent(config.RecentFile{Path: source.Path, Table: source.Table})
	saveConfig(cfg, cfgPath)

	m := ui.New(sheet, ui.Options{
		Config: cfg,
		Source: source,
		Watch:  cfg.WatchEnabled() && !*noWatch && *exportPath == "" && !*exportWizard,
	})
	defer m.Stop()

	switch {
	case *exportPath != "":
		// The extension picks the format; the configured one fills in.
		opts := export.Options{Path: *exportPath}
		if filepath.Ext(*exportPath) == "" {
			opts.Format = cfg.Export.Format
		}
		if err := exportSnapshot(m, sheet.Name, cfg.SummaryEnabled(), opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting snapshot: %v\n", err)
			os.Exit(1)
		}
		return

	case *exportWizard:
		wiz := export.NewWizard(sheet.Name, cfg.Export.Dir, cfg.Export.Format)
		answers, err := wiz.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := exportSnapshot(m, answers.Title, answers.IncludeSummary, answers.Options()); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting snapshot: %v\n", err)
			os.Exit(1)
		}
		// The next wizard starts from these choices.
		cfg.Export.Dir, cfg.Export.Format = answers.Dir, answers.Format
		saveConfig(cfg, cfgPath)
		return
	}

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running sheet viewer: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config from path, or from the default location when
// path is empty. It returns the path the config should be saved to.
func loadConfig(path string) (config.Config, string, error) {
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	return cfg, path, err
}

// saveConfig writes cfg back. A config dir we cannot write is logged, not
// fatal.
func saveConfig(cfg config.Config, path string) {
	if err := config.SaveTo(cfg, path); err != nil {
		debug.Log("config: cannot save %s: %v", path, err)
	}
}

// openSheet loads target. When the current directory holds no sheet and no
// file was named, the most recently opened file is tried instead.
func openSheet(ctx context.Context, cfg config.Config, target, table string, fallback bool) (*datasource.Sheet, datasource.DataSource, error) {
	sheet, source, err := datasource.Load(ctx, target, table)
	if err == nil || !fallback || len(cfg.Recent) == 0 {
		return sheet, source, err
	}
	last := cfg.Recent[0]
	sheet, source, rerr := datasource.Load(ctx, last.Path, last.Table)
	if rerr != nil {
		return nil, datasource.DataSource{}, errors.Join(err, rerr)
	}
	return sheet, source, nil
}

// exportSnapshot lays the panes out at the terminal size and writes what
// the first screen shows.
func exportSnapshot(m ui.Model, title string, withSummary bool, opts export.Options) error {
	w, h := defaultWidth, defaultHeight
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 && th > 0 {
			w, h = tw, th
		}
	}
	m.SetSize(w, h)

	if err := export.Save(m.Snapshot(title, withSummary), opts); err != nil {
		return err
	}
	_, path, _ := export.ResolveFormat(opts.Path, opts.Format)
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set SV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

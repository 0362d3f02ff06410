package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/config"
	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/export"
	"github.com/vanderheijden86/mindmap/pkg/metrics"
	"github.com/vanderheijden86/mindmap/pkg/ui"
	"github.com/vanderheijden86/mindmap/pkg/version"
	"github.com/vanderheijden86/mindmap/pkg/watcher"
)

type flags struct {
	db         string
	configPath string
	export     string
	backup     string
	format     string
	tag        string
	selectID   int64
	width      int
	height     int
	wizard     bool
	watch      bool
	cpuProfile string
	version    bool
	help       bool
}

func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	var f flags
	fs.StringVar(&f.db, "db", "", "Conversation database (SQLite) or backup file (.json)")
	fs.StringVar(&f.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/mindmap/config.yaml)")
	fs.StringVar(&f.export, "export", "", "Write a settled snapshot of the map to this file and exit")
	fs.StringVar(&f.backup, "backup", "", "Write the database as an application backup file (.json) and exit")
	fs.StringVar(&f.format, "format", "", "Snapshot format: svg, png, json or mmd (default: from the file extension)")
	fs.StringVar(&f.tag, "tag", "", "Dim conversations without this tag (with --export)")
	fs.Int64Var(&f.selectID, "select", 0, "Highlight this conversation and its links (with --export)")
	fs.IntVar(&f.width, "width", 0, "Snapshot width in pixels")
	fs.IntVar(&f.height, "height", 0, "Snapshot height in pixels")
	fs.BoolVar(&f.wizard, "wizard", false, "Choose snapshot options interactively")
	fs.BoolVar(&f.watch, "watch", true, "Reload when the database changes (TUI only)")
	fs.StringVar(&f.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&f.version, "version", false, "Show version")
	fs.BoolVar(&f.help, "help", false, "Show help")
	err := fs.Parse(args)
	return f, err
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if f.cpuProfile != "" {
		pf, err := os.Create(f.cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pf.Close()
		if err := pprof.StartCPUProfile(pf); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if f.help {
		fmt.Println("Usage: mm [options]")
		fmt.Println("\nAn interactive mind map of linked conversations.")
		flag.PrintDefaults()
		return
	}
	if f.version {
		fmt.Println(version.String())
		return
	}

	code := run(f, os.Stdout)
	if os.Getenv("MM_DEBUG") != "" {
		metrics.WriteReport(os.Stderr)
	}
	if code != 0 {
		pprof.StopCPUProfile()
		os.Exit(code)
	}
}

func run(f flags, out io.Writer) int {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	debug.Dump("config", cfg)
	path, err := resolveDatabase(f.db, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	src, err := datasource.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
		return 1
	}
	defer src.Close()
	debug.Log("mm: opened %s", path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case f.backup != "":
		err = runBackup(ctx, src, f.backup, out)
	case f.wizard:
		err = runWizard(ctx, src, out)
	case f.export != "":
		err = runExport(ctx, src, snapshotOptions(f, cfg), out)
	default:
		err = runTUI(src, path, cfg, f.watch)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// An MM_DB override is not written back into the config file.
	if os.Getenv("MM_DB") == "" {
		cfg.AddRecent(path)
		if err := saveConfig(f.configPath, cfg); err != nil {
			debug.Log("mm: saving config: %v", err)
		}
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func saveConfig(path string, cfg config.Config) error {
	if path != "" {
		return config.SaveTo(cfg, path)
	}
	return config.Save(cfg)
}

// resolveDatabase picks the flag, then the configured path, then the most
// recently opened database.
func resolveDatabase(flagPath string, cfg config.Config) (string, error) {
	switch {
	case flagPath != "":
		return flagPath, nil
	case cfg.Database.Path != "":
		return cfg.Database.Path, nil
	case len(cfg.Database.Recent) > 0:
		return cfg.Database.Recent[0], nil
	}
	return "", errors.New("no database given; use --db, MM_DB or database.path in the config file")
}

func snapshotOptions(f flags, cfg config.Config) export.SnapshotOptions {
	opts := export.SnapshotOptions{
		Path:   f.export,
		Format: f.format,
		Tag:    f.tag,
		Select: f.selectID,
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		Layout: cfg.TuneLayout,
	}
	if f.width > 0 {
		opts.Width = f.width
	}
	if f.height > 0 {
		opts.Height = f.height
	}
	return opts
}

func runExport(ctx context.Context, src datasource.Source, opts export.SnapshotOptions, out io.Writer) error {
	start := time.Now()
	rep, err := export.SaveSnapshot(ctx, src, opts)
	if err != nil {
		return err
	}
	debug.LogTiming("export", time.Since(start))
	fmt.Fprintf(out, "Wrote %s (%s): %d conversations, %d links, settled in %d ticks\n",
		rep.Path, rep.Format, rep.Nodes, rep.Edges, rep.Ticks)
	if n := rep.Build.Skipped(); n > 0 {
		fmt.Fprintf(out, "Skipped %d records: %s\n", n, rep.Build)
	}
	return nil
}

// runBackup converts src into the backup format the application imports.
func runBackup(ctx context.Context, src datasource.Source, path string, out io.Writer) error {
	b, err := datasource.ExportBackup(ctx, src)
	if err != nil {
		return err
	}
	if err := datasource.WriteBackup(path, b); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote backup %s: %d conversations, %d links\n", path, len(b.Conversations), len(b.Links))
	return nil
}

func runWizard(ctx context.Context, src datasource.Source, out io.Writer) error {
	tags, err := src.ListTagNames(ctx)
	if err != nil {
		return err
	}
	convs, err := src.ListConversations(ctx)
	if err != nil {
		return err
	}
	opts, err := export.NewWizard(tags, convs).Run()
	if err != nil {
		return err
	}
	return runExport(ctx, src, opts, out)
}

func runTUI(src datasource.Source, path string, cfg config.Config, watch bool) error {
	var w *watcher.Watcher
	if watch {
		var err error
		w, err = watcher.NewWatcher(path)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("mm: file watching disabled: %v", err)
			w = nil
		}
	}

	m := ui.NewModel(ui.Options{Source: src, Config: cfg, Watcher: w})
	defer m.Stop()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if cfg.UI.MouseEnabled() {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	return runTUIProgram(tea.NewProgram(m, opts...))
}

func runTUIProgram(p *tea.Program) error {
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

	// Optional auto-quit for automated runs: set MM_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("MM_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()
				select {
				case <-runDone:
				case <-timer.C:
					p.Quit()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	zlog "github.com/rs/zerolog/log"

	"github.com/jgrue/ttunes/internal/config"
	"github.com/jgrue/ttunes/internal/controller"
	"github.com/jgrue/ttunes/internal/library"
	"github.com/jgrue/ttunes/internal/logger"
	"github.com/jgrue/ttunes/internal/player"
	"github.com/jgrue/ttunes/internal/ui"
)

var (
	app        = kingpin.New("ttunes", "Terminal music player")
	directory  = app.Arg("directory", "Music directory to load").String()
	configPath = app.Flag("config", "Path to config file").Default("ttunes.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.File = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := run(cfg); err != nil {
		zlog.Error().Err(err).Msg("exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the catalog, engine and controller together and hands the
// terminal to the UI. Deferred teardown runs on any exit path.
func run(cfg *config.Config) error {
	dir := cfg.Library.Directory
	if *directory != "" {
		dir = *directory
	}

	scanner := library.NewScanner(cfg.Library.Extensions, cfg.Library.IncludeHidden)
	catalog := library.NewCatalog(scanner)

	engine, err := player.NewOto()
	if err != nil {
		return err
	}
	defer engine.Close()
	engine.SetVolume(cfg.Playback.Volume)

	ctrl := controller.New(catalog, engine)
	if err := ctrl.SetDirectory(dir); err != nil {
		// The UI starts anyway; the status line carries the failure and
		// the directory browser can pick another library.
		zlog.Warn().Err(err).Str("dir", dir).Msg("initial library load failed")
	}

	model := ui.New(ctrl, cfg.Playback.TickRateHz)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	ctrl.Stop()
	return nil
}

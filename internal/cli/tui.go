package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/segue/internal/logging"
	"github.com/tessro/segue/internal/tui"
	"github.com/tessro/segue/internal/tui/styles"
)

var (
	tuiRefresh int
	tuiTheme   string
	tuiTuning  tuningFlags
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, album, phase
  • Up Next - ranked recommendations
  • Tuning - filters and weights; sliders apply when released
  • History - tracks listened this session

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search (empty query lists top tracks)
  Space        Play/Pause
  n            Next recommendation
  m / Esc      Maximize / minimize player
  r            Stop and clear the session
  R            Reset tuning
  y            Copy source URL
  Tab          Switch panel`,
	Annotations: map[string]string{annotationLogging: loggingDeferred},
	RunE:        runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	tuiCmd.Flags().StringVar(&tuiTheme, "theme", "", "color theme: auto, dark or light")
	tuiTuning.register(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := initLogging(logging.SetupForTUI); err != nil {
		return err
	}

	theme := cfg.TUI.Theme
	if tuiTheme != "" {
		theme = tuiTheme
	}
	styles.Apply(theme)

	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}

	defaults, err := tuiTuning.apply(cmd, cfg.Recommend.Tuning())
	if err != nil {
		return err
	}

	pb, err := newPlayback(log, defaults)
	if err != nil {
		return err
	}
	defer pb.controller.Dispose()

	pb.controller.Init(cmd.Context())

	app := tui.NewApp(pb.controller, pb.catalog, pb.tuning, time.Duration(refresh)*time.Millisecond, log)
	return tui.Run(app)
}

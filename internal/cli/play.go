package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/segue/internal/api/catalog"
	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
	"github.com/tessro/segue/internal/tail"
	"github.com/tessro/segue/internal/wizard"
)

var (
	playMBID      string
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
	playTuning    tuningFlags
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Play a track and follow its recommendations",
	Long: `Play a track through mpv, then keep playing the most similar
recommendation each time a track ends. Session events are printed as they
happen until the queue runs dry or you press Ctrl+C.

Without a query or --mbid, an interactive search opens.

Examples:
  segue play "teardrop massive attack"
  segue play --mbid 7e5a5f4a-8c1b-4d0a-9b1e-1c1f1e9e1d2a
  segue play "blue monday" --similarity 0.9 -w danceability=0.8`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playMBID, "mbid", "", "play a specific recording id")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom event template")
	playTuning.register(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defaults, err := playTuning.apply(cmd, cfg.Recommend.Tuning())
	if err != nil {
		return err
	}

	pb, err := newPlayback(log, defaults)
	if err != nil {
		return err
	}
	defer pb.controller.Dispose()

	track, err := resolveTrack(ctx, pb.catalog, args)
	if err != nil {
		return err
	}
	if track == nil {
		return nil
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(cfg.Tail.Emoji && !playNoEmoji && wizard.IsTerminal()),
		tail.WithTimestamp(cfg.Tail.Timestamps || playTimestamp),
		tail.WithTemplate(playFormat),
	)

	watcher := tail.NewWatcher(pb.controller)
	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	pb.controller.Init(ctx)
	pb.controller.LoadAndPlay(*track)

	return follow(ctx, watcher, formatter, errCh, seconds(cfg.Player.StartTimeout))
}

// follow prints session events until playback runs out, the starting track
// cannot be played, the player fails to start, or ctx is cancelled.
func follow(ctx context.Context, watcher *tail.Watcher, formatter *tail.Formatter, errCh <-chan error, startTimeout time.Duration) error {
	startup := time.NewTimer(startTimeout + time.Second)
	defer startup.Stop()

	ready := false
	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if JSONOutput() {
				_ = printJSON(eventJSON(event))
			} else {
				fmt.Println(formatter.Format(event))
			}

			if event.Current != nil && event.Current.Ready {
				ready = true
			}
			if event.Type == tail.EventTrackEnded && event.Current != nil && len(event.Current.Queue) == 0 {
				watcher.Stop()
				return nil
			}
			if event.Type == tail.EventLoadFailed && nothingPlaying(event.Current) {
				watcher.Stop()
				return segueerrors.WithSuggestion(
					fmt.Errorf("%w: the starting track has no playable source", segueerrors.ErrSourceResolution),
					"Run 'segue sources <mbid>' to inspect it, or pick another track",
				)
			}

		case <-startup.C:
			if !ready {
				return segueerrors.WithSuggestion(
					fmt.Errorf("%w: mpv did not start within %s", segueerrors.ErrAdapterInit, startTimeout),
					"Check that mpv is installed, or set player.mpv_path in your config",
				)
			}

		case err := <-errCh:
			if err == context.Canceled || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func nothingPlaying(s *core.SessionState) bool {
	return s != nil && !s.HasTrack() && s.Phase != core.PhaseLoading
}

type eventOutput struct {
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	State     *core.SessionState `json:"state"`
}

func eventJSON(e tail.Event) eventOutput {
	return eventOutput{Type: e.Type.String(), Timestamp: e.Timestamp, State: e.Current}
}

// resolveTrack picks the starting track from --mbid, a search query, or the
// interactive search. A nil track means the user cancelled.
func resolveTrack(ctx context.Context, cat *catalog.Catalog, args []string) (*core.Track, error) {
	if playMBID != "" {
		track, err := cat.Track(ctx, playMBID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up track: %w", err)
		}
		return track, nil
	}

	interactive := wizard.NewInteractive(func(q string) ([]core.Track, error) {
		return cat.Search(ctx, q)
	})

	if wizard.NeedsTrack(args, playMBID) {
		if !interactive.CanInteract() {
			return nil, segueerrors.WithSuggestion(
				fmt.Errorf("no track given"),
				"Pass a search query or --mbid",
			)
		}
		return interactive.PromptSearch()
	}

	query := strings.Join(args, " ")
	results, err := cat.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, segueerrors.WithSuggestion(
			fmt.Errorf("%w: nothing matches %q", segueerrors.ErrTrackNotFound, query),
			"Try fewer words, or browse with 'segue top'",
		)
	}
	return interactive.Choose(results)
}

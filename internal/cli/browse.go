package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/segue/internal/browser"
	"github.com/tessro/segue/internal/core"
	segueerrors "github.com/tessro/segue/internal/errors"
)

var (
	topPage        int
	recommendLimit int
	recommendTune  tuningFlags
	featuresRaw    bool
	sourcesOpen    bool
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most listened tracks",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog for tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources <mbid>",
	Short: "List playable sources for a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runSources,
}

var featuresCmd = &cobra.Command{
	Use:   "features <mbid>",
	Short: "Show the audio features of a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeatures,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <mbid>",
	Short: "List tracks similar to a track",
	Long: `Ask the recommendation service for tracks similar to a recording.

Filters and weights default to the [recommend] config section and can be
overridden per call.

Examples:
  segue recommend <mbid> --same-decade=false
  segue recommend <mbid> --similarity 0.5 -w happiness=1 -w sadness=0`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	topCmd.Flags().IntVarP(&topPage, "page", "p", 1, "page number")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "maximum results (default from config)")
	recommendTune.register(recommendCmd)
	featuresCmd.Flags().BoolVar(&featuresRaw, "raw", false, "show raw feature values")
	sourcesCmd.Flags().BoolVarP(&sourcesOpen, "open", "o", false, "open the first source in a web browser")

	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(recommendCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	cat, err := newCatalog(log)
	if err != nil {
		return err
	}

	tracks, err := cat.TopTracks(cmd.Context(), topPage)
	if err != nil {
		return fmt.Errorf("failed to list top tracks: %w", err)
	}
	return outputTracks(tracks)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cat, err := newCatalog(log)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	tracks, err := cat.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(tracks) == 0 && !JSONOutput() {
		fmt.Printf("No tracks match %q\n", query)
		return nil
	}
	return outputTracks(tracks)
}

func outputTracks(tracks []core.Track) error {
	if JSONOutput() {
		if tracks == nil {
			tracks = []core.Track{}
		}
		return printJSON(tracks)
	}
	writeTracks(os.Stdout, tracks)
	return nil
}

func runSources(cmd *cobra.Command, args []string) error {
	cat, err := newCatalog(log)
	if err != nil {
		return err
	}

	sources, err := cat.Sources(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if sourcesOpen {
		if len(sources) == 0 {
			return segueerrors.ErrNoSource
		}
		if err := browser.Open(sources[0].URL()); err != nil {
			return err
		}
	}

	if JSONOutput() {
		type sourceOutput struct {
			core.Source
			URL string `json:"url"`
		}
		out := make([]sourceOutput, 0, len(sources))
		for _, s := range sources {
			out = append(out, sourceOutput{Source: s, URL: s.URL()})
		}
		return printJSON(out)
	}

	if len(sources) == 0 {
		return segueerrors.ErrNoSource
	}

	table := NewTable("#", "PROVIDER", "ID", "URL")
	for i, s := range sources {
		table.Row(fmt.Sprint(i+1), string(s.Provider), s.ID, s.URL())
	}
	table.Flush()
	return nil
}

func runFeatures(cmd *cobra.Command, args []string) error {
	cat, err := newCatalog(log)
	if err != nil {
		return err
	}

	features, err := cat.Features(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get features: %w", err)
	}

	if JSONOutput() {
		return printJSON(features)
	}

	fmt.Printf("%s — %s\n\n", features.Track.Title, features.Track.ArtistNames())

	values := features.Features
	if featuresRaw {
		values = features.RawFeatures
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	table := NewTable("FEATURE", "VALUE")
	for _, name := range names {
		table.Row(name, formatFeature(values[name]))
	}
	table.Flush()
	return nil
}

func formatFeature(v any) string {
	switch v := v.(type) {
	case float64:
		return fmt.Sprintf("%.3f", v)
	case nil:
		return "-"
	default:
		return fmt.Sprint(v)
	}
}

func runRecommend(cmd *cobra.Command, args []string) error {
	tune, err := recommendTune.apply(cmd, cfg.Recommend.Tuning())
	if err != nil {
		return err
	}

	cat, err := newCatalog(log)
	if err != nil {
		return err
	}

	limit := cfg.Recommend.Limit
	if recommendLimit > 0 {
		limit = recommendLimit
	}

	rec, err := cat.Recommend(cmd.Context(), &core.RecommendRequest{
		Target:   args[0],
		Listened: []string{},
		Tuning:   tune,
		Limit:    limit,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", segueerrors.ErrRecommendFetch, err)
	}

	if JSONOutput() {
		return printJSON(rec)
	}

	if rec.Target != nil {
		fmt.Printf("Similar to %s — %s\n", rec.Target.Title, rec.Target.ArtistNames())
	}
	fmt.Println(statsLine(rec.Stats))
	fmt.Println()
	writeSimilar(os.Stdout, rec.Similar)
	return nil
}

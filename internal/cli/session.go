package cli

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tessro/segue/internal/api/catalog"
	"github.com/tessro/segue/internal/api/client"
	"github.com/tessro/segue/internal/mpv"
	"github.com/tessro/segue/internal/player"
	"github.com/tessro/segue/internal/session"
	"github.com/tessro/segue/internal/tuning"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// newCatalog builds the API client from config.
func newCatalog(l logrus.FieldLogger) (*catalog.Catalog, error) {
	c, err := client.New(client.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    seconds(cfg.API.Timeout),
		MaxRetries: cfg.API.MaxRetries,
		RateLimit:  cfg.API.RateLimit,
		Log:        l,
	})
	if err != nil {
		return nil, err
	}
	return catalog.New(c), nil
}

// playback bundles a running session and its collaborators.
type playback struct {
	catalog    *catalog.Catalog
	tuning     *tuning.Store
	controller *session.Controller
}

// newPlayback wires mpv, the player adapter, the catalog and the tuning
// store into a session controller. The caller must Dispose the controller.
func newPlayback(l logrus.FieldLogger, defaults tuning.Config) (*playback, error) {
	cat, err := newCatalog(l)
	if err != nil {
		return nil, err
	}

	widget := mpv.New(mpv.Options{
		Path:       cfg.Player.MPVPath,
		SocketPath: cfg.Player.SocketPath,
		Video:      cfg.Player.Video,
		ExtraArgs:  cfg.Player.ExtraArgs,
	}, l)

	store := tuning.NewStore(defaults)
	ctrl := session.New(session.Deps{
		Player:      player.New(widget, l),
		Resolver:    cat,
		Recommender: cat,
		Tuning:      store,
		Log:         l,
	}, session.Options{
		RecommendLimit: cfg.Recommend.Limit,
		StartTimeout:   seconds(cfg.Player.StartTimeout),
		RequestTimeout: seconds(cfg.API.Timeout),
	})

	return &playback{catalog: cat, tuning: store, controller: ctrl}, nil
}

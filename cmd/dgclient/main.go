// cmd/dgclient/main.go
// Terminal companion for the disc-golf API. Reads are served from a local
// SQLite cache; writes go to the API first.
//
// Usage:
//
//	DGAPP_API_URL=http://localhost:3000 go run ./cmd/dgclient courses
//	go run ./cmd/dgclient play --course <id> --player "Ada"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/cache"
	"github.com/padraicbc/dgapp/client"
	"github.com/padraicbc/dgapp/config"
	applog "github.com/padraicbc/dgapp/logger"
	"github.com/padraicbc/dgapp/presenter"
	"github.com/padraicbc/dgapp/repository"
)

// app is built once per invocation by the root command.
type app struct {
	cfg   *config.ClientConfig
	log   *zap.Logger
	api   *client.Client
	store *cache.Store

	courses *repository.Courses
	players *repository.Players
	rounds  *repository.Rounds
}

func (a *app) coursePresenter() *presenter.Courses { return presenter.NewCourses(a.courses, a.log) }
func (a *app) roundPresenter() *presenter.Rounds   { return presenter.NewRounds(a.rounds, a.log) }

func (a *app) close() {
	if a.log == nil {
		return
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close cache", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var (
		apiURL    string
		cachePath string
		token     string
		debug     bool
	)

	root := &cobra.Command{
		Use:          "dgclient",
		Short:        "Track disc-golf courses and rounds",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadClient()
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if cachePath != "" {
				cfg.CachePath = cachePath
			}
			if token != "" {
				cfg.Token = token
			}
			cfg.Debug = cfg.Debug || debug
			return a.open(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $DGAPP_API_URL)")
	root.PersistentFlags().StringVar(&cachePath, "cache", "", "local cache file (default $DGAPP_CACHE_PATH)")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token for write routes (default $DGAPP_TOKEN)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")

	root.AddCommand(
		coursesCmd(a), courseCmd(a), addCourseCmd(a), editCourseCmd(a), deleteCourseCmd(a),
		roundsCmd(a), roundCmd(a), editRoundCmd(a), deleteRoundCmd(a),
		playersCmd(a),
		playCmd(a),
		syncCmd(a),
		signinCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, cfg *config.ClientConfig) error {
	log, err := applog.NewCLI(cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg, a.log = cfg, log

	a.api, err = client.New(cfg.APIURL, client.WithToken(cfg.Token), client.WithLogger(log))
	if err != nil {
		return err
	}
	a.store, err = cache.Open(ctx, cfg.CachePath, cfg.CourseDeletePolicy, log)
	if err != nil {
		return fmt.Errorf("open cache %s: %w", cfg.CachePath, err)
	}

	a.courses = repository.NewCourses(a.api, a.store, log)
	a.players = repository.NewPlayers(a.api, a.store, log)
	a.rounds = repository.NewRounds(a.api, a.store, log)
	return nil
}

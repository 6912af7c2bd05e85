package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/envirolink/internal/chat"
	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/internal/food"
	"github.com/jgoulah/envirolink/internal/handlers"
	"github.com/jgoulah/envirolink/internal/insights"
	"github.com/jgoulah/envirolink/internal/network"
	"github.com/jgoulah/envirolink/internal/poll"
	"github.com/jgoulah/envirolink/internal/publisher"
	"github.com/jgoulah/envirolink/internal/server"
	"github.com/jgoulah/envirolink/internal/vision"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves energy, chat, inventory, recipe, image analysis and carbon endpoints under /api/v1.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "also poll real-time usage as the watch command does")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := serveAddr
	if addr == "" {
		addr = cfg.GetServerAddr()
	}

	provider := energy.NewRemoteOrMock(cfg)
	reach := network.NewChecker(cfg.GetConnectivityURL(), cfg.GetConnectivityTimeout())
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: handlers.Dependencies{
			Energy:    provider,
			Insights:  insights.NewEnergy(p),
			Inventory: food.NewInventory(db),
			Recipes:   food.NewRecipeGenerator(p, logger),
			Vision:    vision.NewAnalyzer(p),
			NewSession: func() *chat.Session {
				return chat.NewSession(p, chat.WithReachability(reach.Reachable))
			},
		},
	})

	var w *watcher
	if serveWatch {
		// Home Assistant backfill is a separate step (publish)
		cfg.HomeAssistant.Enabled = false
		pub, err := publisher.New(cfg)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()

		w = &watcher{
			provider:  provider,
			db:        db,
			pub:       pub,
			threshold: cfg.GetAlertThreshold(),
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Start(ctx)
	})
	if w != nil {
		g.Go(func() error {
			poll.Every(ctx, cfg.GetWatchInterval(), w.poll)
			return nil
		})
	}

	return g.Wait()
}

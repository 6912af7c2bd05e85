package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/envirolink/internal/database"
	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/internal/network"
	"github.com/jgoulah/envirolink/internal/poll"
	"github.com/jgoulah/envirolink/internal/publisher"
	"github.com/jgoulah/envirolink/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll real-time usage and raise alerts",
	Long: `Polls the energy API for real-time readings until interrupted. Each reading is
stored, published to MQTT when enabled, and recorded as an alert when it exceeds
watch.alert_threshold. Connectivity is checked in the background and changes are logged.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watcher handles one real-time reading at a time
type watcher struct {
	provider  energy.Source
	db        *database.DB
	pub       *publisher.Publisher
	threshold float64
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cfg.HomeAssistant.Enabled = false
	pub, err := publisher.New(cfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	w := &watcher{
		provider:  energy.NewRemoteOrMock(cfg),
		db:        db,
		pub:       pub,
		threshold: cfg.GetAlertThreshold(),
	}
	reach := network.NewChecker(cfg.GetConnectivityURL(), cfg.GetConnectivityTimeout())

	ctx, cancel := commandContext(cmd)
	defer cancel()

	logger.Info().
		Dur("interval", cfg.GetWatchInterval()).
		Float64("threshold", w.threshold).
		Bool("mqtt", pub.MQTTEnabled()).
		Msg("watching real-time usage")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		poll.Every(ctx, cfg.GetWatchInterval(), w.poll)
		return nil
	})
	g.Go(func() error {
		var online atomic.Int32 // 0 unknown, 1 online, 2 offline
		poll.Every(ctx, cfg.GetConnectivityInterval(), func(ctx context.Context) {
			state := int32(2)
			if reach.Reachable(ctx) {
				state = 1
			}
			if ctx.Err() != nil {
				return
			}
			if prev := online.Swap(state); prev != state {
				logger.Info().Bool("online", state == 1).Msg("connectivity changed")
			}
		})
		return nil
	})

	return g.Wait()
}

func (w *watcher) poll(ctx context.Context) {
	r, err := w.provider.RealTime(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn().Err(err).Msg("real-time reading failed")
		}
		return
	}

	if _, err := w.db.InsertReading(r, energy.SourceRealtime); err != nil {
		logger.Error().Err(err).Msg("storing reading")
	}
	logger.Debug().Time("at", r.Timestamp).Float64("value", r.Value).Msg("reading")

	if w.pub.MQTTEnabled() {
		if err := w.pub.PublishReading(r); err != nil {
			logger.Warn().Err(err).Msg("publishing reading")
		}
	}

	if r.Value <= w.threshold {
		return
	}

	alert := highUsageAlert(r, w.threshold)
	id, err := w.db.InsertAlert(alert)
	if err != nil {
		logger.Error().Err(err).Msg("storing alert")
		return
	}
	alert.ID = id
	logger.Warn().Int("id", id).Str("severity", string(alert.Severity)).Msg(alert.Description)

	if w.pub.MQTTEnabled() {
		if err := w.pub.PublishAlert(alert); err != nil {
			logger.Warn().Err(err).Msg("publishing alert")
		}
	}
}

// highUsageAlert describes a reading above threshold. Readings at or above
// one and a half times the threshold are high severity.
func highUsageAlert(r models.EnergyReading, threshold float64) models.Alert {
	severity := models.PriorityMedium
	if r.Value >= threshold*1.5 {
		severity = models.PriorityHigh
	}
	return models.Alert{
		CreatedAt: r.Timestamp,
		Title:     "High energy usage",
		Description: fmt.Sprintf("Usage of %.2f %s at %s is above your %.2f %s threshold",
			r.Value, unitOf(r), r.Timestamp.Format("15:04"), threshold, unitOf(r)),
		Severity: severity,
	}
}

func unitOf(r models.EnergyReading) string {
	if r.Unit == "" {
		return energy.Unit
	}
	return r.Unit
}

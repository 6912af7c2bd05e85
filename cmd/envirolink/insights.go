package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/internal/insights"
	"github.com/jgoulah/envirolink/internal/publisher"
)

var (
	insightsDays    int
	insightsPublish bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate energy saving insights from stored usage",
	Long: `Summarizes the stored energy readings for recent days and asks the configured AI
provider for recommendations. When generation fails, insights computed from the data
are shown instead. With --publish the text is also sent to MQTT.`,
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().IntVar(&insightsDays, "days", 7, "number of days to analyze, ending today")
	insightsCmd.Flags().BoolVar(&insightsPublish, "publish", false, "publish the insights to MQTT")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	if insightsDays < 1 || insightsDays > energy.MaxDays {
		return fmt.Errorf("--days must be between 1 and %d", energy.MaxDays)
	}

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

	ctx, cancel := commandContext(cmd)
	defer cancel()

	days, err := energy.Available(ctx, energy.NewStoreSource(db), time.Now(), insightsDays)
	if err != nil {
		logger.Warn().Err(err).Msg("no usable energy data, using fallback insights")
		days = nil
	} else if len(days) < insightsDays {
		logger.Info().Int("days", len(days)).Int("requested", insightsDays).Msg("some days have no data")
	}

	text := insights.NewEnergy(p).Insights(ctx, days)
	fmt.Println(text)

	if !insightsPublish {
		return nil
	}

	pub, err := publisher.New(cfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	if err := pub.PublishInsight("energy", text); err != nil {
		return fmt.Errorf("publishing insights: %w", err)
	}
	fmt.Println("✓ Published insights to MQTT")
	return nil
}

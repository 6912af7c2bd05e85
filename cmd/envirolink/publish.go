package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/database"
	"github.com/jgoulah/envirolink/internal/publisher"
)

var (
	publishSource string
	publishSince  string
	publishUntil  string
	publishAll    bool
	publishLimit  int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish usage data to Home Assistant",
	Long:  `Reads stored hourly energy readings from the database and backfills them into Home Assistant via HTTP API.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishSource, "source", "", "Only publish readings from this source (api, mock, csv or realtime)")
	publishCmd.Flags().StringVar(&publishSince, "since", "", "Only publish data since this date (YYYY-MM-DD or relative like 7d)")
	publishCmd.Flags().StringVar(&publishUntil, "until", "", "Only publish data until this date (YYYY-MM-DD)")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all records (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of records to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	printHeader("Publish")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("Home Assistant is not enabled in config")
	}

	// MQTT is not needed for backfill
	cfg.MQTT.Enabled = false
	pub, err := publisher.New(cfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var sinceDate, untilDate *time.Time
	if publishSince != "" {
		since, err := parseDate(publishSince)
		if err != nil {
			return fmt.Errorf("parsing --since date: %w", err)
		}
		sinceDate = &since
	}
	if publishUntil != "" {
		until, err := parseDate(publishUntil)
		if err != nil {
			return fmt.Errorf("parsing --until date: %w", err)
		}
		// include the whole day
		until = until.AddDate(0, 0, 1)
		untilDate = &until
	}

	var data []database.StoredReading
	if publishAll {
		data, err = db.ListStoredReadings()
	} else {
		data, err = db.ListUnpublishedReadings()
	}
	if err != nil {
		return fmt.Errorf("listing readings: %w", err)
	}

	filtered := data[:0]
	for _, record := range data {
		if publishSource != "" && record.Source != publishSource {
			continue
		}
		if sinceDate != nil && record.Timestamp.Before(*sinceDate) {
			continue
		}
		if untilDate != nil && !record.Timestamp.Before(*untilDate) {
			continue
		}
		filtered = append(filtered, record)
	}

	if len(filtered) == 0 {
		if publishAll {
			fmt.Println("No data found")
		} else {
			fmt.Println("No unpublished data found")
		}
		return nil
	}

	if publishLimit > 0 && len(filtered) > publishLimit {
		filtered = filtered[:publishLimit]
		fmt.Printf("Limiting to %d records (--limit flag)\n", publishLimit)
	}

	fmt.Printf("Publishing %d records...\n", len(filtered))
	published := 0
	for i, record := range filtered {
		fmt.Printf("[%d/%d] Publishing %s (%.2f %s)... ", i+1, len(filtered),
			record.Timestamp.Format("2006-01-02 15:04"), record.Value, record.Unit)
		if err := pub.Backfill(record.EnergyReading); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(record.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nSuccessfully published %d/%d records\n", published, len(filtered))
	if published > 0 {
		fmt.Println("Run 'envirolink generate-stats' to update the Energy dashboard")
	}
	return nil
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "7d")
func parseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err == nil {
		return t, nil
	}

	// Try relative format (e.g., "7d" for 7 days ago)
	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(dateStr[:len(dateStr)-1], "%d", &days); err == nil {
			return time.Now().AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}

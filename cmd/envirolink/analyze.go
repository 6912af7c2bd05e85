package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/vision"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze-image [file]",
	Short: "Describe the sustainability aspects of a photo",
	Long: `Sends an image to the configured vision model and prints an environmental,
economic and social assessment of what it shows. Images up to 10 MB are accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	fmt.Printf("Analyzing %s...\n\n", args[0])
	text, err := vision.NewAnalyzer(p).AnalyzeFile(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login [service]",
	Short: "Save an API key for a service",
	Long: `Prompts for an API key and saves it to the config file.
Keys can also be supplied through GEMINI_API_KEY, OPENAI_API_KEY and
ENERGY_API_KEY (or a .env file) instead.

Available services: gemini, openai, energy`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"gemini", "openai", "energy"},
	RunE:      runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	service := args[0]
	switch service {
	case "gemini", "openai", "energy":
	default:
		return fmt.Errorf("unknown service: %s (available: gemini, openai, energy)", service)
	}

	fmt.Printf("Enter API key for %s: ", service)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading API key: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return fmt.Errorf("no API key entered")
	}

	// Load existing config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch service {
	case "gemini":
		cfg.AI.Gemini.APIKey = key
	case "openai":
		cfg.AI.OpenAI.APIKey = key
		if cfg.AI.Provider == "" {
			cfg.AI.Provider = "openai"
		}
	case "energy":
		cfg.EnergyAPI.APIKey = key
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Saved %s API key to %s\n", service, getConfigPath())
	if service == "energy" && cfg.EnergyAPI.URL == "" {
		fmt.Println("  ⚠ energy_api.url is not set - fetch will keep using mock data")
	}
	return nil
}

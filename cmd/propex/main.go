package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/disinfowatch/propextract/internal/config"
	"github.com/disinfowatch/propextract/internal/ledger"
	"github.com/disinfowatch/propextract/internal/llm"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	endpoint   string
	modelName  string
	dataFile   string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "propex",
	Short:   "LLM-powered propaganda pattern extractor",
	Long:    "Propex sends source texts and human analyses to a local LLM, recovers the structured analysis from its output, and appends it to a durable JSON collection.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// Flag overrides beat the config file.
		if endpoint != "" {
			cfg.Backend.URL = endpoint
		}
		if modelName != "" {
			cfg.Backend.Model = modelName
		}
		if dataFile != "" {
			cfg.Output.DataFile = dataFile
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Override the backend chat-completions URL")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "Override the backend model name")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data-file", "", "Override the collection file path")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(testConnectionCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(reportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("propex", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/propex/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the backend endpoint, model, and collection file.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection status",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.GetDataFile()
		col, err := ledger.Load(path)
		if err != nil {
			return err
		}

		fmt.Printf("Collection: %s\n\n", path)
		fmt.Printf("  Entries: %d\n", len(col.Entries))
		fmt.Printf("  Created: %s\n", col.Metadata.Created)
		fmt.Printf("  Last updated: %s\n", col.Metadata.LastUpdated)

		if len(col.Entries) > 0 {
			counts := make(map[string]int)
			for _, e := range col.Entries {
				counts[e.Analysis.PrimaryNarrative]++
			}
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range counts {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })

			fmt.Println("\nNarratives:")
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify the analysis backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := client.Ping(ctx); err != nil {
			fmt.Printf("Backend connection failed: %v\n", err)
			fmt.Printf("Make sure a model is loaded and serving at %s\n", cfg.Backend.URL)
			return fmt.Errorf("backend unavailable")
		}
		fmt.Printf("Backend connection successful: %s (%s)\n", cfg.Backend.URL, cfg.Backend.Model)
		return nil
	},
}

func newClient() *llm.Client {
	return llm.NewClient(
		cfg.Backend.URL,
		cfg.Backend.Model,
		os.Getenv(cfg.Backend.APIKeyEnv),
		cfg.Backend.Temperature,
		cfg.Backend.MaxTokens,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
	)
}

// loadCollection loads the ledger, creating the data directory on first use.
func loadCollection() (*ledger.Collection, string, error) {
	path := cfg.GetDataFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating data directory: %w", err)
	}
	col, err := ledger.Load(path)
	if err != nil {
		return nil, "", err
	}
	return col, path, nil
}

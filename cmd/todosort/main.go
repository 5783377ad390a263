// todosort assigns unsectioned Todoist tasks to sections using an LLM.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/outlying/TodoistSorter/internal/classify"
	"github.com/outlying/TodoistSorter/internal/config"
	"github.com/outlying/TodoistSorter/internal/engine"
	"github.com/outlying/TodoistSorter/internal/todoist"
)

var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	projectID  string
	apiToken   string
	provider   string
	model      string
	dryRun     bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "todosort",
	Short: "Assign Todoist tasks to sections using an AI helper",
	Long: `todosort fetches a project's tasks and sections, asks an LLM to map
each unsectioned task onto the best-fitting section, and moves the tasks.

Failures are isolated per task: one rejected move never aborts the others,
and every proposal is reported with its outcome.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runSort,
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the todosort version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("todosort %s\n", version)
	},
}

func runSort(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags beat env beats file.
	if apiToken != "" {
		cfg.Todoist.APIToken = apiToken
	}
	if provider != "" {
		cfg.Classifier.Provider = provider
	}
	if model != "" {
		cfg.Classifier.Model = model
	}

	if cfg.Todoist.APIToken == "" {
		return fmt.Errorf("Todoist API token is required: pass --api-key or set TODOIST_API_TOKEN")
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	classifier, err := buildClassifier(cmd, cfg)
	if err != nil {
		return err
	}
	if closer, ok := classifier.(io.Closer); ok {
		defer closer.Close()
	}

	reconciler := engine.New(store, classifier, logger, engine.Options{DryRun: dryRun})
	_, err = reconciler.Run(cmd.Context(), projectID)
	return err
}

func buildStore(cfg *config.Config) (*todoist.Client, error) {
	storeCfg := todoist.DefaultConfig(cfg.Todoist.APIToken)
	if cfg.Todoist.BaseURL != "" {
		storeCfg.BaseURL = cfg.Todoist.BaseURL
	}
	timeout, err := config.ParseTimeout(cfg.Todoist.Timeout, storeCfg.Timeout)
	if err != nil {
		return nil, err
	}
	storeCfg.Timeout = timeout
	return todoist.NewClientWithConfig(storeCfg), nil
}

func buildClassifier(cmd *cobra.Command, cfg *config.Config) (classify.Classifier, error) {
	providerCfg := &classify.ProviderConfig{
		Provider: classify.Provider(cfg.Classifier.Provider),
		APIKey:   cfg.Classifier.APIKey,
		Model:    cfg.Classifier.Model,
		BaseURL:  cfg.Classifier.BaseURL,
	}
	timeout, err := config.ParseTimeout(cfg.Classifier.Timeout, 0)
	if err != nil {
		return nil, err
	}
	providerCfg.Timeout = timeout

	if providerCfg.Provider == "" {
		detected, err := classify.DetectProvider()
		if err != nil {
			return nil, err
		}
		providerCfg.Provider = detected.Provider
		if providerCfg.APIKey == "" {
			providerCfg.APIKey = detected.APIKey
		}
	}

	return classify.New(cmd.Context(), providerCfg)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.Flags().StringVar(&projectID, "project-id", "", "Todoist project ID to operate on (required)")
	rootCmd.Flags().StringVar(&apiToken, "api-key", "", "Todoist API token (falls back to TODOIST_API_TOKEN)")
	rootCmd.Flags().StringVar(&provider, "provider", "", "classifier provider: openai or gemini (default: auto-detect)")
	rootCmd.Flags().StringVar(&model, "model", "", "classifier model override")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and report proposals without moving tasks")
	_ = rootCmd.MarkFlagRequired("project-id")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

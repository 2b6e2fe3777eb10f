package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mason/internal/app"
	"mason/internal/config"
	"mason/internal/logging"
	"mason/internal/model"
	"mason/internal/ui"
	"mason/internal/watcher"
)

var (
	version   = "0.1.0"
	cfgFile   string
	modelFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mason",
		Short: "AI assistant that builds and edits files from natural language",
		Long: `Mason is an interactive assistant that turns natural-language requests
into reviewed filesystem changes: creating files and folders from a
single instruction, and rewriting existing files behind a diff
confirmation gate. It speaks to OpenAI, Anthropic, Ollama and Gemini
backends through one model registry.`,
		SilenceUsage: true,
		RunE:         runApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mason/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model identifier, e.g. anthropic/claude-3-5-sonnet-latest")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mason version %s\n", version)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List the registered models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range config.RegisteredModels() {
				fmt.Println(m)
			}
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if modelFlag != "" {
		cfg.Model.Name = modelFlag
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Logging.File != "" {
		if err := logging.EnableFileLogging(cfg.Logging.File, logging.ParseLevel(cfg.Logging.Level)); err != nil {
			return fmt.Errorf("failed to enable logging: %w", err)
		}
		defer logging.Close()
	}

	manager, err := model.NewManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	printer := ui.NewPrinter(os.Stdout, ui.NewStyles())

	w, err := watcher.New()
	if err != nil {
		logging.Warn("file watching unavailable", "error", err)
		w = nil
	} else {
		w.Start()
		defer w.Stop()
	}

	application := app.New(cfg, manager, w, os.Stdin, printer)
	return application.Run(context.Background())
}

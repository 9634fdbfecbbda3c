package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shaiso/wfimport/internal/config"
	"github.com/shaiso/wfimport/internal/report"
)

// NewRootCmd создаёт корневую команду со всеми подкомандами.
func NewRootCmd(version string) *cobra.Command {
	var baseURL string
	var jsonOutput bool
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "wfimport",
		Short:         "Import n8n workflow definitions through the n8n HTTP API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "n8n server URL (default $"+config.EnvBaseURL+" or "+config.DefaultBaseURL+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (a failed import includes manual_import steps)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Load environment variables from this file if it exists")

	settingsFn := func() (config.Config, error) {
		if err := config.LoadEnvFile(envFile); err != nil {
			return config.Config{}, err
		}
		cfg := config.FromEnv()
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		return cfg, nil
	}
	outputFn := func() *report.Output {
		return report.NewOutputTo(jsonOutput, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		NewImportCmd(settingsFn, outputFn),
		NewInspectCmd(outputFn),
		NewProbeCmd(settingsFn, outputFn),
		NewHistoryCmd(settingsFn, outputFn),
	)

	return rootCmd
}

// Execute выполняет команду и возвращает код выхода процесса:
// 0 при успехе, 1 при любой ошибке.
func Execute(ctx context.Context, rootCmd *cobra.Command) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		report.NewOutputTo(false, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr()).Error(err.Error())
		return 1
	}
	return 0
}

package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	endpoint   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envEndpoint := os.Getenv("EXAM_ENDPOINT")

	cmd := &cobra.Command{
		Use:   "exam-runner",
		Short: "Sequential multiple-choice exam sessions against a remote scoring endpoint",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", envEndpoint, "scoring endpoint URL (overrides config)")
	cmd.AddCommand(NewRunCmd(&configPath, &endpoint))
	cmd.AddCommand(NewHistoryCmd(&configPath))
	cmd.AddCommand(NewStubServerCmd(&configPath))
	cmd.AddCommand(NewMigrateStubCmd(&configPath))
	return cmd
}

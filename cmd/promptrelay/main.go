package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/promptrelay/promptrelay/logging"
)

var (
	logLevel  string
	logFormat string

	logger *logging.RelayLogger
)

var rootCmd = &cobra.Command{
	Use:   "promptrelay",
	Short: "PromptRelay - LLM provider router with agent personas",
	Long: `PromptRelay routes chat messages to a configurable set of LLM
backends (Anthropic, OpenAI-compatible endpoints, local CLI tools),
bounded by per-provider timeouts, and always answers with a uniform
response even when a backend fails.

Run "promptrelay serve" to start the HTTP server or
"promptrelay ask" to send a single message from the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments set the environment directly.
		_ = godotenv.Load()

		level, err := parseLogLevel(logLevel)
		if err != nil {
			return err
		}
		logger = logging.NewSlogLogger(level, logFormat, false)
		return nil
	},
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch s {
	case "debug":
		return logging.LogLevelDebug, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "error":
		return logging.LogLevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (debug, info, warn, error)", s)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

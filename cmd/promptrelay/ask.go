package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptrelay/promptrelay"
	"github.com/promptrelay/promptrelay/config"
	"github.com/promptrelay/promptrelay/core"
)

var (
	askProvider string
	askAgent    string
	askFormat   string
	askTimeout  time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if askFormat != "text" && askFormat != "json" {
			return fmt.Errorf("unknown format %q (text, json)", askFormat)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		relay, err := promptrelay.New(func(o *promptrelay.Options) {
			o.Config = cfg
			o.Logger = logger.WithComponent("ask")
		})
		if err != nil {
			return fmt.Errorf("build relay: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
		defer cancel()

		resp, err := relay.Submit(ctx, core.Request{
			Text:     strings.Join(args, " "),
			Agent:    askAgent,
			Provider: askProvider,
		})
		if err != nil {
			return err
		}

		if askFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Println(resp.Message)
		if resp.Status != core.StatusOK {
			fmt.Fprintf(os.Stderr, "(provider %s answered with status %s)\n", resp.Provider, resp.Status)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askProvider, "provider", "", "provider override (default from LLM_PROVIDER)")
	askCmd.Flags().StringVar(&askAgent, "agent", "", "agent persona to answer as")
	askCmd.Flags().StringVar(&askFormat, "format", "text", "output format (text, json)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall request budget")
}

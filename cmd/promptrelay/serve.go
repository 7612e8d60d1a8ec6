package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptrelay/promptrelay"
	"github.com/promptrelay/promptrelay/config"
	"github.com/promptrelay/promptrelay/server"
)

var (
	serveAddr    string
	allowOrigins string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		relay, err := promptrelay.New(func(o *promptrelay.Options) {
			o.Config = cfg
			o.Logger = logger.WithComponent("relay")
		})
		if err != nil {
			return fmt.Errorf("build relay: %w", err)
		}

		srv := server.New(relay, func(o *server.Options) {
			o.AllowOrigins = allowOrigins
			o.RateLimit = cfg.RateLimit
			o.RateBurst = cfg.RateBurst
			// Generation-heavy backends (local models, CLI tools) need the
			// longer budget plus slack for the HTTP exchange itself.
			o.ReadTimeout = cfg.GenerationTimeout + 30*time.Second
			o.WriteTimeout = cfg.GenerationTimeout + 30*time.Second
			o.Logger = logger.WithComponent("server")
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(cfg.Addr)
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			logger.Info("shutting down on signal %s", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides PORT)")
	serveCmd.Flags().StringVar(&allowOrigins, "allow-origins", "*", "CORS allowed origins")
}

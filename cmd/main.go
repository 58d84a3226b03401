package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "razorpay-bridge",
		Short:        "Razorpay payment session service",
		Long:         `razorpay-bridge runs Razorpay payment sessions for the commerce platform: order creation, confirmation, capture, refunds and webhook reconciliation.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds a development logger for APP_ENV=development and a
// production JSON logger otherwise.
func newLogger(server config.ServerConfig) (*zap.Logger, error) {
	if server.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

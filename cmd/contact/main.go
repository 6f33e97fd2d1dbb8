package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/logger"
)

// BootstrapName 服务标识
const BootstrapName = "contact"

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   BootstrapName,
	Short: "Südwest-Energie contact form backend",
	Long: `Receives contact form submissions, validates them, writes a record to
Ninox and sends a notification email to the sales team.

Configuration is read from a TOML file and APP_* environment variables
(e.g. APP_SMTP_HOST overrides smtp.host).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadWithDefaults(configPath)
		if err != nil {
			return err
		}
		cfg = c

		return logger.Init(logger.Config{
			Level:      c.Logger.Level,
			Format:     c.Logger.Format,
			Output:     c.Logger.Output,
			FilePath:   c.Logger.FilePath,
			MaxSize:    c.Logger.MaxSize,
			MaxBackups: c.Logger.MaxBackups,
			MaxAge:     c.Logger.MaxAge,
			Compress:   c.Logger.Compress,
			WithCaller: c.Logger.WithCaller,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.GetEnv("APP_CONFIG", "configs/contact/config.toml"), "path to the TOML config file")

	rootCmd.AddCommand(serveCmd, validateCmd, recordCmd, deliveriesCmd, healthcheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

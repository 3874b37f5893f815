package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/rapidhire/internal/config"
	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rapidhire",
	Short: "Rapid-Hire is a recruitment intake bot",
	Long: `Rapid-Hire collects a candidate's name, graduation year, target language and
WhatsApp number through a short Telegram dialogue and appends the application
to a Google Sheets spreadsheet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")

		v := viper.New()
		if err := v.BindPFlag("log.level", cmd.Flags().Lookup("log-level")); err != nil {
			return err
		}
		if err := v.BindPFlag("log.format", cmd.Flags().Lookup("log-format")); err != nil {
			return err
		}

		loaded, err := config.Load(config.Options{File: file, EnvFile: envFile, Viper: v})
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}

		cfg = loaded
		logger = logging.New(level, loaded.Log.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: ./rapidhire.yaml if present)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load (default: ./.env if present)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")
}

package main

import (
	"fmt"

	"github.com/aretw0/rapidhire/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML, with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration the way serve does",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.Requirements{Telegram: true, Sheets: true}); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		fmt.Println("Configuration OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
}

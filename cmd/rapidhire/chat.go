package main

import (
	"os"

	"github.com/aretw0/rapidhire/internal/cli"
	"github.com/aretw0/rapidhire/pkg/adapters/console"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the dialogue in the terminal",
	Long: `Plays the candidate side of the dialogue locally. Applications go to the
configured spreadsheet, or stay in memory when none is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		components, err := cli.Build(cmd.Context(), cfg, logger, cli.BuildOptions{})
		if err != nil {
			return err
		}
		defer components.Close()

		opts := []console.Option{
			console.WithSessionID(sessionID),
			console.WithLogger(logger),
		}
		if !plain && console.IsTerminal(os.Stdout) {
			console.PrintBanner(os.Stdout)
			renderer, err := console.NewGlamourRenderer(80)
			if err != nil {
				return err
			}
			opts = append(opts, console.WithRenderer(renderer))
		}

		return console.New(components.Bot, os.Stdin, os.Stdout, opts...).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", console.DefaultSessionID, "Session key of the terminal candidate")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering")
}

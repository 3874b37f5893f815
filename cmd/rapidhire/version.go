package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/rapidhire"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rapidhire",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rapidhire version %s\n", strings.TrimSpace(rapidhire.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

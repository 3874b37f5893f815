package main

import (
	"fmt"

	"github.com/aretw0/rapidhire/internal/presentation/graph"
	"github.com/aretw0/rapidhire/internal/runtime"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialogue flow",
	Long:  `Outputs a Mermaid diagram (graph TD) of the dialogue stages and transitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(graph.GenerateMermaid(domain.Stages, runtime.NewEngine().Transitions(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/rapidhire/internal/cli"
	"github.com/aretw0/rapidhire/internal/presentation/graph"
	"github.com/aretw0/rapidhire/internal/runtime"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/persistence/middleware"
	"github.com/aretw0/rapidhire/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage in-progress dialogues",
	Long:  `List, inspect, and remove the dialogues kept by the configured session backend.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.StateStore) error {
			sessions, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Println("No active sessions found.")
				return nil
			}

			fmt.Println("Active Sessions:")
			for _, s := range sessions {
				fmt.Println("- " + s)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		asGraph, _ := cmd.Flags().GetBool("graph")
		reveal, _ := cmd.Flags().GetBool("reveal")

		return withStore(func(store ports.StateStore) error {
			if !reveal {
				store = middleware.NewRedactionMiddleware(middleware.PIIFields...)(store)
			}
			state, err := store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}

			if asGraph {
				fmt.Print(graph.GenerateMermaid(domain.Stages, runtime.NewEngine().Transitions(), &graph.Overlay{
					Visited: state.History,
					Current: state.Stage,
				}))
				return nil
			}

			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling state: %w", err)
			}
			fmt.Println(string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.StateStore) error {
			failed := 0
			for _, sessionID := range args {
				if err := store.Delete(cmd.Context(), sessionID); err != nil {
					fmt.Printf("Error removing '%s': %v\n", sessionID, err)
					failed++
				} else {
					fmt.Printf("Removed session '%s'\n", sessionID)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d session(s) could not be removed", failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionInspectCmd.Flags().Bool("graph", false, "Print the flow as Mermaid with the session's path highlighted")
	sessionInspectCmd.Flags().Bool("reveal", false, "Show the candidate's name and phone unmasked")
}

func withStore(fn func(ports.StateStore) error) error {
	store, _, closeStore, err := cli.NewStateStore(cfg.Sessions)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(store)
}

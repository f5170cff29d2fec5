package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Inspect or change the shared viewing mode",
}

var modesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every mode and mark the active one",
	Args:  cobra.NoArgs,
	RunE:  runModesList,
}

var modesCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active mode",
	Args:  cobra.NoArgs,
	RunE:  runModesCurrent,
}

var modesSetCmd = &cobra.Command{
	Use:   "set <label>",
	Short: "Activate a mode on every connected screen",
	Args:  cobra.ExactArgs(1),
	RunE:  runModesSet,
}

func init() {
	modesCmd.AddCommand(modesListCmd)
	modesCmd.AddCommand(modesCurrentCmd)
	modesCmd.AddCommand(modesSetCmd)
	rootCmd.AddCommand(modesCmd)
}

func runModesList(cmd *cobra.Command, args []string) error {
	set, err := apiClient(cmd).GetModes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list modes: %w", err)
	}

	fmt.Println("Available modes:")
	fmt.Println(separator())
	for _, m := range set {
		marker := " "
		if m.Active {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, m.Label)
	}
	return nil
}

func runModesCurrent(cmd *cobra.Command, args []string) error {
	mode, err := apiClient(cmd).GetCurrentMode(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch current mode: %w", err)
	}

	if mode == nil {
		fmt.Println("No mode is active")
		return nil
	}
	fmt.Println(mode.Label)
	return nil
}

func runModesSet(cmd *cobra.Command, args []string) error {
	if err := apiClient(cmd).ChangeMode(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to change mode: %w", err)
	}

	fmt.Printf("✓ Mode set to %q\n", args[0])
	return nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var cleanupYes bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <label>",
	Short: "Delete a store and its registration",
	Long: `Deletes the remote vector store, everything uploaded to it, and the
local registration for the label. This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	label := args[0]

	if !cleanupYes {
		cmd.Printf("Delete store %q and everything in it? [y/N] ", label)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := storeService.Cleanup(cmd.Context(), label); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	cmd.Printf("Store %q deleted.\n", label)
	return nil
}

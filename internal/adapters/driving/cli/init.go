package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var initCollectionURL string

var initCmd = &cobra.Command{
	Use:   "init [label]",
	Short: "Register a collection and fully index it",
	Long: `Creates a vector store for the collection and indexes every document
in it. With --collection, the label is registered first; without it, the
label must already be registered and the whole collection is reindexed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initCollectionURL, "collection", "c", "", "collection URL to register the label against")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	label := ""
	if len(args) > 0 {
		label = args[0]
	}

	cmd.Printf("Indexing collection for label %q...\n", label)

	result, err := syncService.Init(cmd.Context(), label, initCollectionURL)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	cmd.Printf("Store: %s\n", result.StoreHandle)
	cmd.Printf("Indexed %d/%d documents", result.PagesIndexed, result.PagesTotal)
	if result.PagesFailed > 0 {
		cmd.Printf(" (%d failed)", result.PagesFailed)
	}
	cmd.Println()
	cmd.Printf("Cost: $%.6f (indexing $%.6f, images $%.6f)\n",
		result.TotalCost, result.IndexingCost, result.ImageCost)
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [label]",
	Short: "List registered stores, or the documents in one store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	if len(args) > 0 {
		return listDocuments(cmd, args[0])
	}
	return listStores(cmd)
}

func listStores(cmd *cobra.Command) error {
	stores, err := storeService.ListStores(cmd.Context())
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}

	if len(stores) == 0 {
		cmd.Println("No stores registered. Run 'pagesync init <label> --collection <url>' first.")
		return nil
	}

	for _, store := range stores {
		cmd.Printf("%s\n", store.Label)
		cmd.Printf("  collection: %s\n", store.CollectionID)
		cmd.Printf("  store:      %s\n", store.StoreHandle)
		cmd.Printf("  documents:  %d (%s)\n", store.DocumentCount, formatBytes(store.SizeBytes))
	}
	return nil
}

func listDocuments(cmd *cobra.Command, label string) error {
	docs, err := storeService.ListDocuments(cmd.Context(), label)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded yet.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %s  %s\n",
			doc.DocumentID,
			doc.LastModified.Format("2006-01-02 15:04"),
			doc.DisplayName)
	}
	cmd.Printf("%d documents\n", len(docs))
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

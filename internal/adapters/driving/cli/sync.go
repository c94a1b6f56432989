package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driving"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync [label]",
	Short: "Incrementally reindex recently changed documents",
	Long: `Reindexes documents modified within the lookback window. With no
label, the single registered store is used. With --force, every listed
document is reindexed regardless of modification time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "reindex all documents regardless of timestamps")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	label := ""
	if len(args) > 0 {
		label = args[0]
	}

	result, err := syncWithProgress(cmd.Context(), cmd, label)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Checked %d documents: %d updated, %d skipped",
		result.PagesChecked, result.PagesUpdated, result.PagesSkipped)
	if result.PagesFailed > 0 {
		cmd.Printf(", %d failed", result.PagesFailed)
	}
	cmd.Println()
	if result.TotalCost > 0 {
		cmd.Printf("Cost: $%.6f (indexing $%.6f, images $%.6f)\n",
			result.TotalCost, result.IndexingCost, result.ImageCost)
	}
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(ctx context.Context, cmd *cobra.Command, label string) (*domain.SyncResult, error) {
	type outcome struct {
		result *domain.SyncResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := syncService.Sync(ctx, label, syncForce)
		ch <- outcome{result, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-ch:
			if lastCount > 0 {
				cmd.Println()
			}
			return out.result, out.err
		case <-ticker.C:
			// Best effort: a status error just skips this tick.
			status, err := syncStatus(ctx, label)
			if err == nil && status != nil && status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsProcessed)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}

func syncStatus(ctx context.Context, label string) (*driving.SyncStatus, error) {
	return syncService.Status(ctx, label)
}

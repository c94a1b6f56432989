package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

var billingPeriod string

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Summarise metered API spend from the cost ledger",
	RunE:  runBilling,
}

func init() {
	billingCmd.Flags().StringVarP(&billingPeriod, "period", "p", "total", "aggregation period: total, daily, or monthly")
	rootCmd.AddCommand(billingCmd)
}

func runBilling(cmd *cobra.Command, _ []string) error {
	if billingService == nil {
		return errors.New("billing service not configured")
	}

	summary, err := billingService.Summary(cmd.Context(), domain.BillingPeriod(billingPeriod))
	if err != nil {
		return fmt.Errorf("billing failed: %w", err)
	}

	for _, bucket := range summary.Breakdown {
		cmd.Printf("%s  %s\n", bucket.Period, formatTotals(bucket.CostTotals))
	}
	if len(summary.Breakdown) > 0 {
		cmd.Println()
	}
	cmd.Printf("Total       %s\n", formatTotals(summary.Total))
	return nil
}

func formatTotals(t domain.CostTotals) string {
	return fmt.Sprintf("$%.6f (embedding $%.6f, vision $%.6f, query $%.6f)",
		t.TotalCost, t.EmbeddingCost, t.VisionCost, t.QueryCost)
}

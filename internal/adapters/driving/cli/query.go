package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryLabel string
	queryModel string
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question grounded in an indexed store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryLabel, "label", "l", "", "store label (optional when only one store is registered)")
	queryCmd.Flags().StringVarP(&queryModel, "model", "m", "", "override the query model")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")
	result, err := queryService.Query(cmd.Context(), queryLabel, question, queryModel)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	cmd.Println(result.Answer)
	if len(result.Grounding) > 0 {
		cmd.Println("\nSources:")
		for _, src := range result.Grounding {
			cmd.Printf("  - %s\n", src)
		}
	}
	cmd.Printf("\n[%s | %d in / %d out tokens | $%.6f | %.1fs]\n",
		result.Model, result.Usage.InputTokens, result.Usage.OutputTokens,
		result.Cost, result.Elapsed)
	return nil
}

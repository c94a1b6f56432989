// Package cli provides the command-line driving adapter. Commands talk
// to the core exclusively through the driving ports; services are
// injected once via Configure before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Commands check for nil so a partially configured
// binary fails with a clear message instead of a panic.
var (
	syncService    driving.SyncService
	queryService   driving.QueryService
	billingService driving.BillingService
	storeService   driving.StoreService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pagesync",
	Short: "Keep a vector search store in sync with a document collection",
	Long: `pagesync keeps externally hosted vector search stores in sync with
changing source documents, and tracks the per-operation cost of every
metered API call along the way.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Services bundles the driving ports the CLI needs.
type Services struct {
	Sync    driving.SyncService
	Query   driving.QueryService
	Billing driving.BillingService
	Stores  driving.StoreService
}

// Configure injects the services the commands run against.
func Configure(s Services) {
	syncService = s.Sync
	queryService = s.Query
	billingService = s.Billing
	storeService = s.Stores
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

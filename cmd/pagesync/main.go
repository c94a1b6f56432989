// pagesync keeps externally hosted vector search stores in sync with
// changing source documents and tracks the cost of every metered call.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	fileconfig "github.com/custodia-labs/pagesync-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagesync-cli/internal/adapters/driven/ledger/jsonl"
	fileregistry "github.com/custodia-labs/pagesync-cli/internal/adapters/driven/registry/file"
	"github.com/custodia-labs/pagesync-cli/internal/adapters/driven/source/notion"
	storegemini "github.com/custodia-labs/pagesync-cli/internal/adapters/driven/vectorstore/gemini"
	visiongemini "github.com/custodia-labs/pagesync-cli/internal/adapters/driven/vision/gemini"
	"github.com/custodia-labs/pagesync-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagesync-cli/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := os.Getenv("PAGESYNC_HOME")

	cfg, err := fileconfig.Load(dataDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	registryStore, err := fileregistry.NewRegistryStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer registryStore.Close()

	ledgerDir := ""
	if dataDir != "" {
		ledgerDir = filepath.Join(dataDir, "ledger")
	}
	ledger, err := jsonl.NewLedger(ledgerDir)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}

	pricing := cfg.PriceTable()
	registry := services.NewStoreRegistry(registryStore)

	// Services that need a missing API key stay nil; the commands that
	// depend on them report "not configured" instead of failing here, so
	// billing and version keep working without credentials.
	svcs := cli.Services{
		Billing: services.NewBillingAggregator(ledger),
	}

	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		store, err := storegemini.NewStore(storegemini.Config{APIKey: geminiKey})
		if err != nil {
			return err
		}
		vision, err := visiongemini.NewService(visiongemini.Config{APIKey: geminiKey})
		if err != nil {
			return err
		}

		svcs.Query = services.NewQueryGateway(registry, store, ledger, pricing, cfg.Models.Query, "cli")
		svcs.Stores = services.NewStoreManager(registry, store)

		if token := os.Getenv("NOTION_TOKEN"); token != "" {
			source, err := notion.NewProvider(notion.Config{Token: token})
			if err != nil {
				return err
			}
			pipeline := services.NewIndexingPipeline(
				source, store, vision, ledger, pricing,
				cfg.Models.Embedding, cfg.Models.Vision,
			)
			svcs.Sync = services.NewSyncOrchestrator(
				registry, source, store, services.NewChangeDetector(), pipeline,
				services.SyncOptions{
					SyncWindow:  cfg.SyncWindow(),
					SettleDelay: cfg.SettleDelay(),
				},
			)
		}
	}

	cli.Configure(svcs)
	cli.SetVersion(version)

	return cli.Execute()
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gstdesk/pkg/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror all invoices into the local cache",
	Long: `Sync fetches the invoices of every business you own and mirrors them
into the local SQLite cache, so list and stats work offline.`,
	Run: runSync,
}

func runSync(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()
	ctx := context.Background()

	cache := a.openCache()
	defer cache.Close()

	businesses, err := a.client.ListBusinesses(ctx)
	exitOnError(err, "failed to list businesses")
	if len(businesses) == 0 {
		fmt.Println("No businesses to sync.")
		return
	}

	var mu sync.Mutex
	counts := map[string]int{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, biz := range businesses {
		g.Go(func() error {
			invoices, err := a.client.ListInvoices(gctx, biz.ID)
			if err != nil {
				return fmt.Errorf("list invoices for %s: %w", biz.Name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if err := cache.UpsertAll(invoices); err != nil {
				return fmt.Errorf("mirror invoices for %s: %w", biz.Name, err)
			}
			counts[biz.Name] = len(invoices)
			return nil
		})
	}
	exitOnError(g.Wait(), "sync failed")

	total := 0
	for _, biz := range businesses {
		fmt.Printf("%-24s %d invoices\n", biz.Name, counts[biz.Name])
		total += counts[biz.Name]
	}
	slog.Info("sync completed", "businesses", len(businesses), "invoices", total)
}

var statsBusiness string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals from the local cache",
	Run:   runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsBusiness, "business", "", "business id (defaults to all)")
}

func runStats(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()

	cache := a.openCache()
	defer cache.Close()

	stats, err := cache.Stats(statsBusiness)
	exitOnError(err, "failed to read cache stats")

	fmt.Println("=== Invoice Statistics ===")
	fmt.Printf("Total invoices:  %d\n", stats.Total)
	for _, status := range []domain.InvoiceStatus{
		domain.StatusUploaded, domain.StatusProcessing, domain.StatusExtracted,
		domain.StatusNeedsReview, domain.StatusFailed,
	} {
		if n := stats.ByStatus[status]; n > 0 {
			fmt.Printf("  %-14s %d\n", status.View().Label+":", n)
		}
	}
	fmt.Printf("Taxable value:   %.2f\n", stats.TaxableValue)
	fmt.Printf("GST total:       %.2f\n", stats.GSTTotal)
	fmt.Printf("Grand total:     %.2f\n", stats.GrandTotal)
}

// File: price-compare-storefront/cmd/browse/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/config"
	"price-compare-storefront/internal/domain"
	"price-compare-storefront/internal/logger"
	"price-compare-storefront/internal/store"
	"price-compare-storefront/internal/tui"
)

type printOptions struct {
	search    string
	category  string
	store     string
	minPrice  float64
	maxPrice  float64
	minRating float64
	sort      string
	compare   []string
	showTable bool
}

var (
	envFile   string
	apiURL    string
	limit     int
	printMode bool
	verbose   bool
	opts      printOptions
)

var rootCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and compare products from the terminal",
	Long: `browse loads the product catalog once at startup and lets you search,
filter, sort and compare up to 5 products side by side.

Run without flags to start the interactive storefront, or pass --print
to apply the filter flags once and print the result.`,
	SilenceUsage: true,
	RunE:         runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Catalog API base URL (or set API_URL env)")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0, "Maximum number of products to fetch (default: CATALOG_PRODUCT_LIMIT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.Flags().BoolVar(&printMode, "print", false, "Print the filtered catalog and exit")
	rootCmd.Flags().StringVar(&opts.search, "search", "", "Case-insensitive search over name and description")
	rootCmd.Flags().StringVar(&opts.category, "category", "", "Exact category to show")
	rootCmd.Flags().StringVar(&opts.store, "store", "", "Exact store to show")
	rootCmd.Flags().Float64Var(&opts.minPrice, "min-price", domain.DefaultMinPrice, "Lower price bound")
	rootCmd.Flags().Float64Var(&opts.maxPrice, "max-price", domain.DefaultMaxPrice, "Upper price bound")
	rootCmd.Flags().Float64Var(&opts.minRating, "min-rating", 0, "Minimum rating (0, 3, 3.5, 4, 4.5)")
	rootCmd.Flags().StringVar(&opts.sort, "sort", string(domain.SortNewest), "Sort order: newest, price-low, price-high, rating")
	rootCmd.Flags().StringSliceVar(&opts.compare, "compare", nil, "Product ids to add to the comparison (at most 5)")
	rootCmd.Flags().BoolVar(&opts.showTable, "comparison", false, "Print the comparison table instead of the grid")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
	} else if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.Catalog.Source = config.SourceAPI
		cfg.Catalog.APIURL = apiURL
	}
	if limit > 0 {
		cfg.Catalog.ProductLimit = limit
	}

	var out io.Writer = io.Discard
	if verbose {
		out = cmd.ErrOrStderr()
	}
	log := logger.NewWithWriter(out, "browse", cfg.IsDevelopment(), cfg.LogLevel)

	fetch := newFetcher(cmd.Context(), cfg, log)

	if printMode {
		return printCatalog(cmd.OutOrStdout(), fetch(), opts)
	}

	p := tea.NewProgram(tui.New(fetch, tui.DefaultStyles()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// newFetcher opens the configured source and returns the single startup fetch.
func newFetcher(ctx context.Context, cfg *config.Config, log zerolog.Logger) tui.FetchFunc {
	if ctx == nil {
		ctx = context.Background()
	}
	return func() catalog.Snapshot {
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.FetchTimeout)
		defer cancel()

		reader, closer, err := store.Open(fetchCtx, cfg)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open catalog source")
			return catalog.FailedSnapshot(err)
		}
		defer closer.Close()

		snap := catalog.Load(fetchCtx, reader, cfg.Catalog.ProductLimit)
		if snap.Err != nil {
			log.Error().Err(snap.Err).Msg("Catalog fetch failed")
		} else {
			log.Info().Int("products", len(snap.Catalog.Products)).Msg("Catalog loaded")
		}
		return snap
	}
}

func printCatalog(w io.Writer, snap catalog.Snapshot, o printOptions) error {
	ctrl := catalog.NewControllerFrom(snap)

	f := domain.DefaultCriteria()
	if o.category != "" {
		f.Category = &o.category
	}
	if o.store != "" {
		f.Store = &o.store
	}
	f.MinPrice, f.MaxPrice, f.MinRating = o.minPrice, o.maxPrice, o.minRating
	ctrl.SetFilters(f)
	ctrl.SetSearch(o.search)
	ctrl.SetSort(domain.ParseSortKey(o.sort))

	for _, id := range o.compare {
		err := ctrl.ToggleComparison(domain.ProductID(id))
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			fmt.Fprintln(w, domain.CapacityMessage)
		case errors.Is(err, domain.ErrProductNotFound):
			fmt.Fprintf(w, "Unknown product %q\n", id)
		}
	}
	if o.showTable {
		ctrl.ToggleComparisonView()
	}

	_, err := io.WriteString(w, tui.RenderSnapshot(ctrl, tui.PlainStyles()))
	return err
}

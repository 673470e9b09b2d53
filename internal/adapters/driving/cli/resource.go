package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

var (
	articlesLimit int
	articlesJSON  bool
)

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Read and evict cached resources",
	Long: `Resources are addressed by kind and params hash. The hash is the last
segment of a finished job's result URL.`,
}

var resourceGetCmd = &cobra.Command{
	Use:   "get <kind> <hash>",
	Short: "Print a finished resource as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runResourceGet,
}

var resourceEvictCmd = &cobra.Command{
	Use:   "evict <kind> <hash>",
	Short: "Delete a cached resource",
	Long: `Delete a cached resource so the next request rebuilds it. Resources that
depend on it are left in place.`,
	Args: cobra.ExactArgs(2),
	RunE: runResourceEvict,
}

var resourceArticlesCmd = &cobra.Command{
	Use:   "articles <filter-set-hash>",
	Short: "List the articles of a filter set",
	Args:  cobra.ExactArgs(1),
	RunE:  runResourceArticles,
}

func init() {
	resourceArticlesCmd.Flags().IntVarP(&articlesLimit, "limit", "n", 20, "maximum number of articles to list (0 = all)")
	resourceArticlesCmd.Flags().BoolVar(&articlesJSON, "json", false, "output articles as JSON")
	resourceCmd.AddCommand(resourceGetCmd)
	resourceCmd.AddCommand(resourceEvictCmd)
	resourceCmd.AddCommand(resourceArticlesCmd)
	rootCmd.AddCommand(resourceCmd)
}

func runResourceGet(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseResourceKind(args[0])
	if err != nil {
		return err
	}
	resources, err := resourceService()
	if err != nil {
		return err
	}

	result, err := resources.FindHash(cmd.Context(), kind, args[1])
	if err != nil {
		return describeLookupError(kind, args[1], err)
	}
	return printJSON(cmd, result)
}

func runResourceEvict(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseResourceKind(args[0])
	if err != nil {
		return err
	}
	resources, err := resourceService()
	if err != nil {
		return err
	}

	if err := resources.Evict(cmd.Context(), kind, args[1]); err != nil {
		return fmt.Errorf("evicting %s: %w", kind, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Evicted %s %s\n", kind, args[1])
	return nil
}

func runResourceArticles(cmd *cobra.Command, args []string) error {
	resources, err := resourceService()
	if err != nil {
		return err
	}

	articles, err := resources.FilterSetArticles(cmd.Context(), args[0])
	if err != nil {
		return describeLookupError(domain.KindFilterSet, args[0], err)
	}

	total := len(articles)
	if articlesLimit > 0 && len(articles) > articlesLimit {
		articles = articles[:articlesLimit]
	}
	if articlesJSON {
		return printJSON(cmd, articles)
	}

	out := cmd.OutOrStdout()
	if total == 0 {
		fmt.Fprintln(out, "No articles.")
		return nil
	}
	for _, a := range articles {
		fmt.Fprintf(out, "  [%d] %s\n", a.ArticleID, a.Title)
		if a.PMID != 0 {
			fmt.Fprintf(out, "      PMID: %d\n", a.PMID)
		}
	}
	if total > len(articles) {
		fmt.Fprintf(out, "\n%d of %d articles shown\n", len(articles), total)
	}
	return nil
}

// describeLookupError phrases cache misses the way the API does.
func describeLookupError(kind domain.ResourceKind, hash string, err error) error {
	switch {
	case errors.Is(err, domain.ErrResourceDoesNotExist):
		return fmt.Errorf("%s does not exist with hash %s", kind, hash)
	case errors.Is(err, domain.ErrResourceCreationInProgress):
		return fmt.Errorf("%s creation is in progress", kind)
	default:
		return fmt.Errorf("reading %s: %w", kind, err)
	}
}

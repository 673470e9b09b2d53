package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

var (
	submitParamsPath   string
	submitQuery        string
	submitLimit        int
	submitTempIDs      []int64
	submitSummaryTerms string
	submitNumTerms     int
	submitForce        bool
	submitWait         bool
	submitJSON         bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <filter_set|clustering|article_group>",
	Short: "Start building a resource",
	Long: `Start a background job that builds a resource and everything it depends on.

Parameters come from a JSON document (--params, "-" for stdin) or from the
filter flags. Fields that are not given take their defaults.

Examples:
  litmapper submit filter_set --query "sepsis AND (children OR infants)"
  litmapper submit article_group --query melanoma --summary-terms "named entities" --wait
  litmapper submit clustering --params clustering.json --force`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.KindFilterSet), string(domain.KindClustering), string(domain.KindArticleGroup)},
	RunE:      runSubmit,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitParamsPath, "params", "", "JSON parameters file, or - for stdin")
	f.StringVarP(&submitQuery, "query", "q", "", "full-text search query")
	f.IntVarP(&submitLimit, "limit", "n", 0, "maximum number of query matches")
	f.Int64SliceVar(&submitTempIDs, "temp-ids", nil, "temporary article ids to include")
	f.StringVar(&submitSummaryTerms, "summary-terms", "", `group term source: "mesh terms" or "named entities"`)
	f.IntVar(&submitNumTerms, "num-terms", 0, "terms per group summary")
	f.BoolVar(&submitForce, "force", false, "rebuild even if the resource is cached")
	f.BoolVarP(&submitWait, "wait", "w", false, "wait for the job to finish")
	f.BoolVar(&submitJSON, "json", false, "output the job as JSON")
	submitCmd.MarkFlagsMutuallyExclusive("params", "query")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseResourceKind(args[0])
	if err != nil {
		return err
	}
	jobs, err := jobService()
	if err != nil {
		return err
	}

	params, err := submitParams(cmd, kind)
	if err != nil {
		return err
	}

	job, err := jobs.Start(cmd.Context(), params, submitForce)
	if err != nil {
		return fmt.Errorf("starting job: %w", err)
	}

	if submitJSON {
		if err := printJSON(cmd, job); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Started job %s\n", job.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "  Params hash: %s\n", params.Hash())
		fmt.Fprintf(cmd.OutOrStdout(), "  Status:      %s\n", job.Location())
	}

	if !submitWait {
		return nil
	}
	return watchJobs(cmd, []string{job.ID})
}

// submitParams decodes --params, or assembles a document from the filter flags.
func submitParams(cmd *cobra.Command, kind domain.ResourceKind) (domain.Params, error) {
	if submitParamsPath != "" {
		data, err := readInput(cmd, submitParamsPath)
		if err != nil {
			return nil, fmt.Errorf("reading params: %w", err)
		}
		return domain.DecodeParams(kind, data)
	}

	flags := cmd.Flags()
	filter := map[string]any{}
	if submitQuery != "" {
		filter["full_text_search_query"] = submitQuery
	}
	if flags.Changed("limit") {
		filter["limit"] = submitLimit
	}
	if len(submitTempIDs) > 0 {
		filter["temp_article_ids"] = submitTempIDs
	}

	var doc map[string]any
	switch kind {
	case domain.KindFilterSet:
		doc = filter
	case domain.KindClustering:
		doc = map[string]any{"filter_set": filter}
	case domain.KindArticleGroup:
		doc = map[string]any{"clustering": map[string]any{"filter_set": filter}}
		if flags.Changed("summary-terms") {
			doc["summary_terms"] = submitSummaryTerms
		}
		if flags.Changed("num-terms") {
			doc["num_terms"] = submitNumTerms
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	return domain.DecodeParams(kind, data)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

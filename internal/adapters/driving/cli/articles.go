package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

const (
	loadBatchSize = 500

	// maxRecordBytes bounds one JSONL line; embeddings make records long.
	maxRecordBytes = 16 << 20
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Manage the article corpus",
}

var articlesLoadCmd = &cobra.Command{
	Use:   "load <file.jsonl>",
	Short: "Load articles from a JSON Lines file",
	Long: `Load articles into the configured article store. Each line is one
article with optional embedding and MeSH terms:

  {"article_id": 1, "pmid": 3100, "title": "...", "abstract": "...",
   "embedding": [0.1, ...], "mesh_terms": ["Humans", "Sepsis"]}

Existing articles with the same id are replaced. Use - to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runArticlesLoad,
}

func init() {
	articlesCmd.AddCommand(articlesLoadCmd)
	rootCmd.AddCommand(articlesCmd)
}

func runArticlesLoad(cmd *cobra.Command, args []string) error {
	if svc == nil || svc.Articles == nil {
		return fmt.Errorf("article loader: %w", errNotConfigured)
	}

	var in io.Reader
	if args[0] == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening articles: %w", err)
		}
		defer f.Close()
		in = f
	}

	total, err := loadArticles(cmd, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d articles\n", total)
	return nil
}

func loadArticles(cmd *cobra.Command, in io.Reader) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	var (
		batch []domain.ArticleRecord
		total int
		line  int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := svc.Articles.SaveArticles(cmd.Context(), batch); err != nil {
			return fmt.Errorf("saving articles: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec domain.ArticleRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.ArticleID == 0 {
			return total, fmt.Errorf("line %d: %w", line, errors.New("article_id is required"))
		}
		batch = append(batch, rec)
		if len(batch) == loadBatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("reading articles: %w", err)
	}
	return total, flush()
}

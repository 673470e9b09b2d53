package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "View and change settings",
	Annotations: map[string]string{annotationConfigOnly: "true"},
	Long: `View and change settings in the config file.

Keys use dot notation, for example cache.backend or embedding.model.
Environment variables named LITMAPPER_<KEY> with dots replaced by
underscores override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save the file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func configStore() (driven.ConfigStore, error) {
	if svc == nil || svc.ConfigStore == nil {
		return nil, fmt.Errorf("config store: %w", errNotConfigured)
	}
	return svc.ConfigStore, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := configStore()
	if err != nil {
		return err
	}
	cfg := svc.Config
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Config file: %s\n\n", store.Path())
	rows := [][2]string{
		{"data_dir", cfg.DataDir},
		{"cache.backend", cfg.Cache.Backend},
		{"jobs.backend", cfg.Jobs.Backend},
		{"queue.backend", cfg.Queue.Backend},
		{"queue.poll_interval", cfg.Queue.PollInterval.String()},
		{"articles.backend", cfg.Articles.Backend},
		{"embedding.provider", cfg.Embedding.Provider},
		{"embedding.base_url", cfg.Embedding.BaseURL},
		{"embedding.model", cfg.Embedding.Model},
		{"embedding.api_key", maskSecret(cfg.Embedding.APIKey)},
		{"embedding.requests_per_second", strconv.FormatFloat(cfg.Embedding.RequestsPerSecond, 'g', -1, 64)},
		{"worker.concurrency", strconv.Itoa(cfg.Worker.Concurrency)},
		{"worker.poll_interval", cfg.Worker.PollInterval.String()},
		{"worker.max_attempts", strconv.Itoa(cfg.Worker.MaxAttempts)},
		{"http.addr", cfg.HTTP.Addr},
		{"log.verbose", strconv.FormatBool(cfg.Log.Verbose)},
	}
	if cfg.Cache.Backend == domain.BackendRedis || cfg.Jobs.Backend == domain.BackendRedis || cfg.Queue.Backend == domain.BackendRedis {
		rows = append(rows,
			[2]string{"cache.redis_url", maskURL(cfg.Cache.RedisURL)},
			[2]string{"jobs.redis_url", maskURL(cfg.Jobs.RedisURL)},
			[2]string{"queue.redis_url", maskURL(cfg.Queue.RedisURL)},
		)
	}
	if cfg.Articles.Backend == domain.BackendPostgres {
		rows = append(rows, [2]string{"articles.postgres_dsn", maskURL(cfg.Articles.PostgresDSN)})
	}

	for _, r := range rows {
		fmt.Fprintf(out, "  %-32s %s\n", r[0], r[1])
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := configStore()
	if err != nil {
		return err
	}
	v, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("%s is not set", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := configStore()
	if err != nil {
		return err
	}
	if err := store.Set(args[0], parseValue(args[1])); err != nil {
		return fmt.Errorf("setting %s: %w", args[0], err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], store.Path())
	return nil
}

// parseValue stores booleans and numbers with their natural type so the
// file stays readable. Everything else, including durations, stays a string.
func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// maskURL hides the password in a connection URL.
func maskURL(s string) string {
	at := strings.LastIndex(s, "@")
	scheme := strings.Index(s, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return s
	}
	creds := s[scheme+3 : at]
	if user, _, ok := strings.Cut(creds, ":"); ok {
		return s[:scheme+3] + user + ":****" + s[at:]
	}
	return s
}

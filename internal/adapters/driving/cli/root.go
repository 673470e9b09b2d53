// Package cli implements the litmapper command line.
//
// Commands reach the core through the services installed with SetServices,
// or built on demand by the Bootstrap installed with SetBootstrap.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Command annotations controlling setup.
const (
	// annotationStandalone marks commands that run without services.
	annotationStandalone = "litmapper/standalone"

	// annotationConfigOnly marks commands that only need the config store.
	annotationConfigOnly = "litmapper/config-only"
)

// Services are the ports the commands call into.
type Services struct {
	Resources driving.ResourceService
	Jobs      driving.JobService

	// Worker consumes queued tasks. Nil when the process only submits work.
	Worker driving.Worker

	// Articles loads corpus records. Nil when the article store is read-only.
	Articles driven.ArticleLoader

	// ConfigStore is the backing settings file.
	ConfigStore driven.ConfigStore

	// Config is the configuration the services were built from.
	Config domain.Config

	// Watch follows configuration changes until ctx is cancelled. Optional.
	Watch func(ctx context.Context) error

	// Close releases stores and connections. Optional.
	Close func() error
}

// Options are the global flag values handed to a Bootstrap.
type Options struct {
	ConfigPath string
	Verbose    bool

	// ConfigOnly asks for Services with only ConfigStore and Config set,
	// without opening stores or providers.
	ConfigOnly bool
}

// Bootstrap builds services from configuration.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	svc          *Services
	ownsServices bool
	bootstrap    Bootstrap

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "litmapper",
	Short: "Cluster and summarise biomedical literature",
	Long: `litmapper filters a literature corpus by full-text query, embeds and
clusters the matching articles, and summarises each cluster by its most
representative terms.

Resources are built by background jobs and cached by the hash of their
parameters, so repeated requests are served from the cache.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.litmapper/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	svc = s
	ownsServices = false
}

// SetBootstrap installs the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if svc != nil || bootstrap == nil || hasAnnotation(cmd, annotationStandalone) {
		return nil
	}

	opts := Options{
		ConfigPath: configPath,
		Verbose:    verbose,
		ConfigOnly: hasAnnotation(cmd, annotationConfigOnly),
	}
	s, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	svc, ownsServices = s, true
	if s.Config.Log.Verbose {
		logger.SetVerbose(true)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if !ownsServices || svc == nil {
		return nil
	}
	closer := svc.Close
	svc, ownsServices = nil, false
	if closer != nil {
		return closer()
	}
	return nil
}

func hasAnnotation(cmd *cobra.Command, name string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[name] == "true" {
			return true
		}
	}
	return false
}

// ==================== Helper Functions ====================

var errNotConfigured = errors.New("services not configured")

func resourceService() (driving.ResourceService, error) {
	if svc == nil || svc.Resources == nil {
		return nil, fmt.Errorf("resource service: %w", errNotConfigured)
	}
	return svc.Resources, nil
}

func jobService() (driving.JobService, error) {
	if svc == nil || svc.Jobs == nil {
		return nil, fmt.Errorf("job service: %w", errNotConfigured)
	}
	return svc.Jobs, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readInput reads a file, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui"
	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
)

var (
	jobJSON       bool
	watchInterval time.Duration
	watchPlain    bool
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect creation jobs",
}

var jobStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the status of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobStatus,
}

var jobWatchCmd = &cobra.Command{
	Use:   "watch <job-id>...",
	Short: "Follow jobs until they finish",
	Long: `Follow one or more jobs until each succeeds or fails.

On a terminal this opens the interactive monitor, where enter opens the
result of a finished job. Otherwise status changes are printed as lines.
The command fails if any job fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJobWatch,
}

func init() {
	jobStatusCmd.Flags().BoolVar(&jobJSON, "json", false, "output the job as JSON")
	jobWatchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print status lines even on a terminal")
	jobCmd.PersistentFlags().DurationVar(&watchInterval, "interval", time.Second, "polling interval")
	submitCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "polling interval with --wait")
	jobCmd.AddCommand(jobStatusCmd)
	jobCmd.AddCommand(jobWatchCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	jobs, err := jobService()
	if err != nil {
		return err
	}

	job, err := jobs.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrJobNotFound) {
		return fmt.Errorf("no job found for ID: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("getting job: %w", err)
	}

	if jobJSON {
		return printJSON(cmd, job)
	}
	printJob(cmd, job)
	return nil
}

func runJobWatch(cmd *cobra.Command, args []string) error {
	return watchJobs(cmd, args)
}

// watchJobs follows ids until all are terminal and fails if any failed.
func watchJobs(cmd *cobra.Command, ids []string) error {
	jobs, err := jobService()
	if err != nil {
		return err
	}

	var final []*domain.Job
	if !watchPlain && isTerminal(cmd.OutOrStdout()) {
		final, err = watchInteractive(cmd.Context(), jobs, ids)
	} else {
		final, err = watchPlainLines(cmd, jobs, ids)
	}
	if err != nil {
		return err
	}
	return jobsOutcome(final)
}

func watchInteractive(ctx context.Context, jobs driving.JobService, ids []string) ([]*domain.Job, error) {
	resources, err := resourceService()
	if err != nil {
		return nil, err
	}
	app, err := tui.NewApp(ctx, tui.NewPorts(jobs, resources), ids, tui.Options{PollInterval: watchInterval})
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	final, err := app.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return final, nil
}

// watchPlainLines polls until every job is terminal, printing each status change.
func watchPlainLines(cmd *cobra.Command, jobs driving.JobService, ids []string) ([]*domain.Job, error) {
	ctx := cmd.Context()
	latest := make(map[string]*domain.Job, len(ids))
	last := make(map[string]string, len(ids))

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		pending := 0
		for _, id := range ids {
			if j := latest[id]; j != nil && j.Done() {
				continue
			}
			job, err := jobs.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("getting job %s: %w", id, err)
			}
			latest[id] = job

			line := fmt.Sprintf("%s: %s", job.Status, job.StatusDetail)
			if line != last[id] {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", id, strings.TrimSuffix(line, ": "))
				last[id] = line
			}
			if !job.Done() {
				pending++
			}
		}
		if pending == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	final := make([]*domain.Job, len(ids))
	for i, id := range ids {
		final[i] = latest[id]
		if final[i].Status == domain.JobStatusSuccess {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] result: %s\n", id, final[i].ResultURL)
		}
	}
	return final, nil
}

// jobsOutcome returns an error naming every failed or unfinished job.
func jobsOutcome(final []*domain.Job) error {
	var failed []string
	for _, j := range final {
		switch {
		case j == nil:
			failed = append(failed, "unknown job did not report")
		case j.Status == domain.JobStatusFailed:
			failed = append(failed, fmt.Sprintf("job %s failed: %s", j.ID, j.StatusDetail))
		case !j.Done():
			failed = append(failed, fmt.Sprintf("job %s still %s", j.ID, j.Status))
		}
	}
	if len(failed) > 0 {
		return errors.New(strings.Join(failed, "; "))
	}
	return nil
}

func printJob(cmd *cobra.Command, job *domain.Job) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:    %s\n", job.ID)
	fmt.Fprintf(out, "Status: %s\n", job.Status)
	if job.StatusDetail != "" {
		fmt.Fprintf(out, "Detail: %s\n", job.StatusDetail)
	}
	if job.ResultURL != "" {
		fmt.Fprintf(out, "Result: %s\n", job.ResultURL)
	}
}

package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func TestJobStatusCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.jobs.records["abc"] = []*domain.Job{
		{ID: "abc", Status: domain.JobStatusSuccess, ResultURL: "/literature/clustering/h"},
	}

	out, err := execute(t, "", "job", "status", "abc")

	require.NoError(t, err)
	assert.Contains(t, out, "Job:    abc")
	assert.Contains(t, out, "Status: success")
	assert.Contains(t, out, "Result: /literature/clustering/h")
	assert.NotContains(t, out, "Detail:")
}

func TestJobStatusCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.jobs.records["abc"] = []*domain.Job{{ID: "abc", Status: domain.JobStatusFailed, StatusDetail: "boom"}}

	out, err := execute(t, "", "job", "status", "abc", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, `{"job_id":"abc","status":"failed","status_detail":"boom"}`, out)
}

func TestJobStatusCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "job", "status", "missing")

	require.Error(t, err)
	assert.Equal(t, "no job found for ID: missing", err.Error())
}

func TestJobWatchCmd_Plain(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.jobs.records["a"] = []*domain.Job{
		{ID: "a", Status: domain.JobStatusInProgress, StatusDetail: "Clustering"},
		{ID: "a", Status: domain.JobStatusInProgress, StatusDetail: "Clustering"},
		{ID: "a", Status: domain.JobStatusSuccess, ResultURL: "/literature/clustering/h"},
	}
	ts.jobs.records["b"] = []*domain.Job{
		{ID: "b", Status: domain.JobStatusSuccess, ResultURL: "/literature/filter_set/h"},
	}

	out, err := execute(t, "", "job", "watch", "a", "b", "--interval", "1ms")

	require.NoError(t, err)
	assert.Equal(t, 1, countLines(out, "[a] in progress: Clustering"))
	assert.Contains(t, out, "[a] result: /literature/clustering/h")
	assert.Contains(t, out, "[b] result: /literature/filter_set/h")
}

func TestJobWatchCmd_UnknownJob(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "job", "watch", "ghost", "--interval", "1ms")

	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestJobsOutcome(t *testing.T) {
	assert.NoError(t, jobsOutcome([]*domain.Job{{ID: "a", Status: domain.JobStatusSuccess}}))

	err := jobsOutcome([]*domain.Job{
		{ID: "a", Status: domain.JobStatusFailed, StatusDetail: "x"},
		{ID: "b", Status: domain.JobStatusInProgress},
		nil,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job a failed: x")
	assert.Contains(t, err.Error(), "job b still in progress")
	assert.Contains(t, err.Error(), "unknown job did not report")
}

func countLines(out, line string) int {
	n := 0
	for _, l := range strings.Split(out, "\n") {
		if l == line {
			n++
		}
	}
	return n
}

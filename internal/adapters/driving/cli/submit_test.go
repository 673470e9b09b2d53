package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func TestSubmitCmd_FilterSetFromFlags(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "submit", "filter_set", "--query", "sepsis", "--limit", "5", "--temp-ids", "7,8")

	require.NoError(t, err)
	params, ok := ts.jobs.started.(domain.FilterSetParams)
	require.True(t, ok)
	assert.Equal(t, "sepsis", params.Query())
	require.NotNil(t, params.Limit)
	assert.Equal(t, 5, *params.Limit)
	assert.Equal(t, []int64{7, 8}, params.TempArticleIDs)
	assert.False(t, ts.jobs.force)

	assert.Contains(t, out, "Started job job-1")
	assert.Contains(t, out, params.Hash())
	assert.Contains(t, out, "/info/job/job-1")
}

func TestSubmitCmd_NoLimitFlagMeansUnlimited(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "submit", "filter_set", "-q", "melanoma")

	require.NoError(t, err)
	params := ts.jobs.started.(domain.FilterSetParams)
	assert.Nil(t, params.Limit)
}

func TestSubmitCmd_ArticleGroupNestsFilter(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "submit", "article_group",
		"--query", "asthma", "--summary-terms", "named entities", "--num-terms", "4", "--force")

	require.NoError(t, err)
	params, ok := ts.jobs.started.(domain.ArticleGroupParams)
	require.True(t, ok)
	assert.Equal(t, domain.SummaryNamedEntities, params.SummaryTerms)
	assert.Equal(t, 4, params.NumTerms)
	assert.Equal(t, "asthma", params.Clustering.FilterSet.Query())
	assert.Equal(t, 30, params.Clustering.UMAPNNeighbors)
	assert.True(t, ts.jobs.force)
}

func TestSubmitCmd_ParamsFromStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	doc := `{"filter_set": {"full_text_search_query": "copd"}, "umap_metric": "euclidean"}`
	_, err := execute(t, doc, "submit", "clustering", "--params", "-")

	require.NoError(t, err)
	params, ok := ts.jobs.started.(domain.ClusteringParams)
	require.True(t, ok)
	assert.Equal(t, domain.MetricEuclidean, params.UMAPMetric)
	assert.Equal(t, "copd", params.FilterSet.Query())
}

func TestSubmitCmd_InvalidParams(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, `{"limit": "ten"}`, "submit", "filter_set", "--params", "-")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitCmd_UnknownKind(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "submit", "concept_map")

	assert.ErrorIs(t, err, domain.ErrUnsupportedResource)
}

func TestSubmitCmd_StartFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.jobs.startErr = errors.New("queue closed")

	_, err := execute(t, "", "submit", "filter_set")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting job: queue closed")
}

func TestSubmitCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "submit", "filter_set", "--json")

	require.NoError(t, err)
	var job domain.Job
	require.NoError(t, json.Unmarshal([]byte(out), &job))
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, domain.JobStatusInProgress, job.Status)
}

func TestSubmitCmd_WaitUntilSuccess(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.jobs.records["job-1"] = []*domain.Job{
		{ID: "job-1", Status: domain.JobStatusInProgress, StatusDetail: "Creating filter set"},
		{ID: "job-1", Status: domain.JobStatusSuccess, ResultURL: "/literature/filter_set/h"},
	}

	out, err := execute(t, "", "submit", "filter_set", "--wait", "--interval", "1ms")

	require.NoError(t, err)
	assert.Contains(t, out, "[job-1] in progress: Creating filter set")
	assert.Contains(t, out, "[job-1] success")
	assert.Contains(t, out, "[job-1] result: /literature/filter_set/h")
}

func TestSubmitCmd_WaitReportsFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.jobs.records["job-1"] = []*domain.Job{
		{ID: "job-1", Status: domain.JobStatusFailed, StatusDetail: domain.ErrClusteringFailed.Error()},
	}

	_, err := execute(t, "", "submit", "clustering", "--wait", "--interval", "1ms")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "job job-1 failed: clustering failed")
}

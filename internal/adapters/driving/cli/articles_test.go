package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticlesLoadCmd_Stdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	input := `{"article_id": 1, "pmid": 10, "title": "A", "abstract": "x", "embedding": [0.5, 1], "mesh_terms": ["Humans"]}

{"article_id": 2, "title": "B", "temporary": true}
`
	out, err := execute(t, input, "articles", "load", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 articles")
	require.Len(t, ts.loader.batches, 1)
	batch := ts.loader.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, int64(10), batch[0].PMID)
	assert.Equal(t, []float32{0.5, 1}, batch[0].Embedding)
	assert.Equal(t, []string{"Humans"}, batch[0].MeSHTerms)
	assert.True(t, batch[1].Temporary)
}

func TestArticlesLoadCmd_Batches(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var b strings.Builder
	for i := 1; i <= 1001; i++ {
		fmt.Fprintf(&b, "{\"article_id\": %d, \"title\": \"t\"}\n", i)
	}

	out, err := execute(t, b.String(), "articles", "load", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1001 articles")
	require.Len(t, ts.loader.batches, 3)
	assert.Len(t, ts.loader.batches[0], 500)
	assert.Len(t, ts.loader.batches[2], 1)
	assert.Equal(t, int64(1001), ts.loader.batches[2][0].ArticleID)
}

func TestArticlesLoadCmd_BadLine(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "{\"article_id\": 1}\nnot json\n", "articles", "load", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestArticlesLoadCmd_MissingID(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "{\"title\": \"no id\"}\n", "articles", "load", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "article_id is required")
}

func TestArticlesLoadCmd_SaveError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.loader.err = errors.New("disk full")

	_, err := execute(t, "{\"article_id\": 1}\n", "articles", "load", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving articles: disk full")
}

func TestArticlesLoadCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "articles", "load", t.TempDir()+"/absent.jsonl")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening articles")
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// StartJobInput is the input schema for the start_job tool.
type StartJobInput struct {
	Kind   string         `json:"kind" jsonschema:"resource kind: filter_set, clustering or article_group"`
	Params map[string]any `json:"params,omitempty" jsonschema:"resource parameters; omitted fields take their defaults"`
	Force  bool           `json:"force,omitempty" jsonschema:"rebuild the resource even if it is cached"`
}

// JobInput is the input schema for the job_status tool.
type JobInput struct {
	JobID string `json:"job_id" jsonschema:"the id returned by start_job"`
}

// ResourceInput addresses a cached resource by kind and params hash.
type ResourceInput struct {
	Kind string `json:"kind" jsonschema:"resource kind: filter_set, clustering or article_group"`
	Hash string `json:"hash" jsonschema:"the params hash from the job result URL"`
}

// ArticlesInput is the input schema for the filter_set_articles tool.
type ArticlesInput struct {
	Hash  string `json:"hash" jsonschema:"the filter set params hash"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of articles to return (default 50)"`
}

// JobOutput describes a job.
type JobOutput struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
	ResultURL    string `json:"result_url,omitempty"`
	Hash         string `json:"hash,omitempty"`
}

// ResourceOutput carries a finished resource.
type ResourceOutput struct {
	Kind   string `json:"kind"`
	Hash   string `json:"hash"`
	Result any    `json:"result"`
}

// EvictOutput confirms an eviction.
type EvictOutput struct {
	Evicted bool `json:"evicted"`
}

// ArticlesOutput lists the articles of a filter set.
type ArticlesOutput struct {
	Articles []ArticleOutput `json:"articles"`
	Count    int             `json:"count"`
	Total    int             `json:"total"`
}

// ArticleOutput is a single article summary.
type ArticleOutput struct {
	ArticleID int64  `json:"article_id"`
	PMID      int64  `json:"pmid,omitempty"`
	Title     string `json:"title"`
}

const defaultArticleLimit = 50

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_job",
		Description: "Start building a filter set, clustering or article group in the background",
	}, s.handleStartJob)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "job_status",
		Description: "Report the status of a resource creation job",
	}, s.handleJobStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_resource",
		Description: "Fetch a finished resource by kind and params hash",
	}, s.handleGetResource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evict_resource",
		Description: "Delete a cached resource so the next request rebuilds it",
	}, s.handleEvictResource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filter_set_articles",
		Description: "List the articles selected by a filter set",
	}, s.handleFilterSetArticles)
}

func (s *Server) handleStartJob(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartJobInput,
) (*mcp.CallToolResult, JobOutput, error) {
	kind, err := domain.ParseResourceKind(input.Kind)
	if err != nil {
		return nil, JobOutput{}, err
	}

	raw := []byte("{}")
	if input.Params != nil {
		raw, err = json.Marshal(input.Params)
		if err != nil {
			return nil, JobOutput{}, fmt.Errorf("encoding params: %w", err)
		}
	}
	params, err := domain.DecodeParams(kind, raw)
	if err != nil {
		return nil, JobOutput{}, err
	}

	job, err := s.ports.Jobs.Start(ctx, params, input.Force)
	if err != nil {
		return nil, JobOutput{}, fmt.Errorf("starting job: %w", err)
	}

	out := jobOutput(job)
	out.Hash = params.Hash()
	return nil, out, nil
}

func (s *Server) handleJobStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JobInput,
) (*mcp.CallToolResult, JobOutput, error) {
	job, err := s.ports.Jobs.Get(ctx, input.JobID)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, jobOutput(job), nil
}

func (s *Server) handleGetResource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResourceInput,
) (*mcp.CallToolResult, ResourceOutput, error) {
	kind, err := domain.ParseResourceKind(input.Kind)
	if err != nil {
		return nil, ResourceOutput{}, err
	}

	result, err := s.ports.Resources.FindHash(ctx, kind, input.Hash)
	if err != nil {
		return nil, ResourceOutput{}, err
	}

	return nil, ResourceOutput{Kind: string(kind), Hash: input.Hash, Result: result}, nil
}

func (s *Server) handleEvictResource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResourceInput,
) (*mcp.CallToolResult, EvictOutput, error) {
	kind, err := domain.ParseResourceKind(input.Kind)
	if err != nil {
		return nil, EvictOutput{}, err
	}

	if err := s.ports.Resources.Evict(ctx, kind, input.Hash); err != nil {
		return nil, EvictOutput{}, fmt.Errorf("evicting %s: %w", kind, err)
	}
	return nil, EvictOutput{Evicted: true}, nil
}

func (s *Server) handleFilterSetArticles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArticlesInput,
) (*mcp.CallToolResult, ArticlesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultArticleLimit
	}

	articles, err := s.ports.Resources.FilterSetArticles(ctx, input.Hash)
	if err != nil {
		return nil, ArticlesOutput{}, err
	}

	n := min(limit, len(articles))
	output := ArticlesOutput{
		Articles: make([]ArticleOutput, n),
		Count:    n,
		Total:    len(articles),
	}
	for i := range n {
		output.Articles[i] = ArticleOutput{
			ArticleID: articles[i].ArticleID,
			PMID:      articles[i].PMID,
			Title:     articles[i].Title,
		}
	}

	return nil, output, nil
}

func jobOutput(job *domain.Job) JobOutput {
	return JobOutput{
		JobID:        job.ID,
		Status:       string(job.Status),
		StatusDetail: job.StatusDetail,
		ResultURL:    job.ResultURL,
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for litmapper resources.
	uriScheme = "litmapper://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "kinds",
		Name:        "kinds",
		Description: "Supported resource kinds with their default parameters",
		MIMEType:    "application/json",
	}, s.handleKindsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "literature/{kind}/{hash}",
		Name:        "literature-resource",
		Description: "A finished filter set, clustering or article group",
		MIMEType:    "application/json",
	}, s.handleLiteratureResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "jobs/{jobId}",
		Name:        "job",
		Description: "Status of a resource creation job",
		MIMEType:    "application/json",
	}, s.handleJobResource)
}

// handleKindsResource lists each kind with the params it uses when none are given.
func (s *Server) handleKindsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type kindInfo struct {
		Kind     string        `json:"kind"`
		Stage    string        `json:"stage"`
		Defaults domain.Params `json:"defaults"`
	}

	infos := make([]kindInfo, 0, len(domain.ResourceKinds))
	for _, kind := range domain.ResourceKinds {
		defaults, err := domain.DecodeParams(kind, []byte("{}"))
		if err != nil {
			return nil, fmt.Errorf("default params for %s: %w", kind, err)
		}
		infos = append(infos, kindInfo{Kind: string(kind), Stage: domain.StageDetail(kind), Defaults: defaults})
	}

	return jsonResult(req.Params.URI, infos)
}

// handleLiteratureResource returns a finished resource.
func (s *Server) handleLiteratureResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	kindName, hash := extractResourceAddress(req.Params.URI)
	if hash == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	kind, err := domain.ParseResourceKind(kindName)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Resources.FindHash(ctx, kind, hash)
	if errors.Is(err, domain.ErrResourceDoesNotExist) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", kind, err)
	}

	return jsonResult(req.Params.URI, result)
}

// handleJobResource returns a job record.
func (s *Server) handleJobResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	jobID := extractJobID(req.Params.URI)
	if jobID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	job, err := s.ports.Jobs.Get(ctx, jobID)
	if errors.Is(err, domain.ErrJobNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	return jsonResult(req.Params.URI, job)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractResourceAddress splits litmapper://literature/{kind}/{hash}.
func extractResourceAddress(uri string) (kind, hash string) {
	const prefix = uriScheme + "literature/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	kind, hash, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/")
	if !ok || strings.Contains(hash, "/") {
		return "", ""
	}
	return kind, hash
}

// extractJobID extracts the job ID from litmapper://jobs/{jobId}.
func extractJobID(uri string) string {
	const prefix = uriScheme + "jobs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}

package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// defaultSearchLimit is used when the caller passes no limit.
const defaultSearchLimit = 10

// errUpdatesUnavailable is returned by update tools when no update service is wired.
var errUpdatesUnavailable = errors.New("update service not configured")

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string   `json:"query" jsonschema:"the search query, matched against titles, abbreviations, tags and text"`
	Limit int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Types []string `json:"types,omitempty" jsonschema:"restrict results to these document types"`
	Unit  string   `json:"unit,omitempty" jsonschema:"restrict results to documents owned by this unit id"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	Unit       string   `json:"unit,omitempty"`
	Anchor     string   `json:"anchor,omitempty"`
	Score      float64  `json:"score"`
	Match      string   `json:"match"`
	Tags       []string `json:"tags,omitempty"`
	Content    string   `json:"content,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	ID string `json:"id" jsonschema:"the document id returned by search"`
}

// UpdateInput is the input schema for the update tools.
type UpdateInput struct {
	Locale string `json:"locale,omitempty" jsonschema:"content locale, defaults to the configured locale"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search rules, units, equipment and articles in the offline dataset",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch one indexed document by id",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_updates",
		Description: "Check the remote release for changed content and reindex when needed",
	}, s.handleCheckUpdates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "force_refresh",
		Description: "Refetch every resource and rebuild the search index",
	}, s.handleForceRefresh)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := domain.SearchOptions{Limit: limit, GroupID: input.Unit}
	for _, t := range input.Types {
		opts.Types = append(opts.Types, domain.DocumentType(t))
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		doc := results[i].Document
		output.Results[i] = SearchResultOutput{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Type:       string(doc.Type),
			Unit:       doc.GroupName,
			Anchor:     doc.Anchor,
			Score:      results[i].Score,
			Match:      string(results[i].Match),
			Tags:       doc.Tags,
			Content:    doc.Body,
		}
	}

	return nil, output, nil
}

// handleGetDocument returns one document.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, domain.SearchDocument, error) {
	doc, err := s.ports.Search.Get(ctx, input.ID)
	if err != nil {
		return nil, domain.SearchDocument{}, err
	}
	return nil, *doc, nil
}

// handleCheckUpdates runs a routine update check.
func (s *Server) handleCheckUpdates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateInput,
) (*mcp.CallToolResult, domain.SyncResult, error) {
	if s.ports.Updates == nil {
		return nil, domain.SyncResult{}, errUpdatesUnavailable
	}
	result, err := s.ports.Updates.CheckForUpdates(ctx, s.locale(input.Locale))
	if err != nil {
		return nil, domain.SyncResult{}, err
	}
	return nil, result, nil
}

// handleForceRefresh runs a forced refresh. Failures are reported in the
// result rather than as a tool error.
func (s *Server) handleForceRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateInput,
) (*mcp.CallToolResult, domain.ForceResult, error) {
	if s.ports.Updates == nil {
		return nil, domain.ForceResult{}, errUpdatesUnavailable
	}
	return nil, s.ports.Updates.ForceUpdateAndReindex(ctx, s.locale(input.Locale)), nil
}

func (s *Server) locale(requested string) string {
	if requested != "" {
		return requested
	}
	return s.ports.Locale
}

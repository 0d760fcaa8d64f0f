package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// SearchPapersInput is the input schema for the search_papers tool.
type SearchPapersInput struct {
	Query     string `json:"query" jsonschema:"natural-language description of what to find"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default from settings)"`
	FilesOnly bool   `json:"files_only,omitempty" jsonschema:"return only the ranked files, without chunks"`
}

// SearchImagesInput is the input schema for the search_images tool.
type SearchImagesInput struct {
	Query string `json:"query" jsonschema:"description of the image to find"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of images to return (default from settings)"`
}

// AddPaperInput is the input schema for the add_paper tool.
type AddPaperInput struct {
	Path   string   `json:"path" jsonschema:"absolute path of the PDF to add"`
	Topics []string `json:"topics,omitempty" jsonschema:"candidate topics; the closest one is assigned"`
	NoMove bool     `json:"no_move,omitempty" jsonschema:"index the file in place instead of archiving a copy"`
}

// AddImageInput is the input schema for the add_image tool.
type AddImageInput struct {
	Path string `json:"path" jsonschema:"absolute path of the image to index"`
}

// registerTools registers a tool for every configured service.
func (s *Server) registerTools() {
	if s.ports.Papers != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_papers",
			Description: "Search the paper archive; returns matching chunks with page ranges and the best files",
		}, s.handleSearchPapers)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_paper",
			Description: "Add a PDF to the archive, filing it under the closest topic",
		}, s.handleAddPaper)
	}
	if s.ports.Images != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_images",
			Description: "Find indexed images matching a text description",
		}, s.handleSearchImages)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_image",
			Description: "Index one image file in place",
		}, s.handleAddImage)
	}
}

func (s *Server) handleSearchPapers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchPapersInput,
) (*mcp.CallToolResult, domain.PaperSearchResult, error) {
	opts := domain.PaperSearchOptions{TopK: input.TopK, FilesOnly: input.FilesOnly}
	result, err := s.ports.Papers.SearchPapers(ctx, input.Query, opts)
	if err != nil {
		return nil, domain.PaperSearchResult{}, err
	}
	return nil, *result, nil
}

func (s *Server) handleSearchImages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchImagesInput,
) (*mcp.CallToolResult, domain.ImageSearchResult, error) {
	result, err := s.ports.Images.SearchImages(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, domain.ImageSearchResult{}, err
	}
	return nil, *result, nil
}

func (s *Server) handleAddPaper(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddPaperInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	opts := domain.AddPaperOptions{Topics: input.Topics, NoMove: input.NoMove}
	result, err := s.ports.Papers.AddPaper(ctx, input.Path, opts)
	if err != nil {
		return nil, domain.IngestResult{}, err
	}
	return nil, *result, nil
}

func (s *Server) handleAddImage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddImageInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	result, err := s.ports.Images.AddImage(ctx, input.Path)
	if err != nil {
		return nil, domain.IngestResult{}, err
	}
	return nil, *result, nil
}

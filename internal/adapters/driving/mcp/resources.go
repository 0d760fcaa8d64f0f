package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for paperdex resources.
	uriScheme = "paperdex://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for collection sizes.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Number of indexed paper chunks and images",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	if s.ports.Settings == nil {
		return
	}

	// Static resource for the topic folders of the archive.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "topics",
		Name:        "topics",
		Description: "Topic folders of the paper archive with their paper counts",
		MIMEType:    "application/json",
	}, s.handleTopicsResource)

	// Template for the papers filed under one topic.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "topics/{topic}",
		Name:        "topic-papers",
		Description: "Papers archived under a specific topic",
		MIMEType:    "application/json",
	}, s.handleTopicPapersResource)
}

// handleStatsResource returns entry counts per collection. A collection
// whose service is not configured is omitted.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := map[string]int{}
	if s.ports.Papers != nil {
		n, err := s.ports.Papers.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting paper chunks: %w", err)
		}
		stats["paper_chunks"] = n
	}
	if s.ports.Images != nil {
		n, err := s.ports.Images.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting images: %w", err)
		}
		stats["images"] = n
	}
	return jsonResult(req.Params.URI, stats)
}

// handleTopicsResource lists the topic folders below the papers directory.
func (s *Server) handleTopicsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	root, err := s.papersDir()
	if err != nil {
		return nil, err
	}

	type topicInfo struct {
		Topic  string `json:"topic"`
		Papers int    `json:"papers"`
	}

	entries, err := os.ReadDir(root)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	infos := []topicInfo{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		papers, err := listPapers(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing topic %s: %w", e.Name(), err)
		}
		infos = append(infos, topicInfo{Topic: e.Name(), Papers: len(papers)})
	}

	return jsonResult(req.Params.URI, infos)
}

// handleTopicPapersResource lists the papers archived under one topic.
func (s *Server) handleTopicPapersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	topic := extractTopic(req.Params.URI)
	if topic == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	root, err := s.papersDir()
	if err != nil {
		return nil, err
	}

	papers, err := listPapers(filepath.Join(root, topic))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}

	return jsonResult(req.Params.URI, papers)
}

func (s *Server) papersDir() (string, error) {
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return "", fmt.Errorf("getting settings: %w", err)
	}
	return settings.Workspace.PapersDir, nil
}

// listPapers returns the absolute paths of the PDFs directly inside dir.
func listPapers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	papers := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			path, err := filepath.Abs(filepath.Join(dir, e.Name()))
			if err != nil {
				return nil, err
			}
			papers = append(papers, path)
		}
	}
	sort.Strings(papers)
	return papers, nil
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

// extractTopic extracts the topic from a URI like paperdex://topics/{topic}.
// Topics that would escape the archive are rejected.
func extractTopic(uri string) string {
	const prefix = uriScheme + "topics/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	topic, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || topic == "" || topic == "." || topic == ".." || strings.ContainsAny(topic, `/\`) {
		return ""
	}
	return topic
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// uriScheme is the custom URI scheme for coursemate resources.
const uriScheme = "coursemate://"

type courseInfo struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "courses",
		Name:        "courses",
		Description: "Courses with a configured collection",
		MIMEType:    "application/json",
	}, s.handleCoursesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{courseId}",
		Name:        "course",
		Description: "The collection a course resolves to",
		MIMEType:    "application/json",
	}, s.handleCourseResource)
}

// handleCoursesResource lists configured courses.
func (s *Server) handleCoursesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := []courseInfo{}
	if s.ports.Settings != nil {
		courses, err := s.ports.Settings.Courses()
		if err != nil {
			return nil, fmt.Errorf("listing courses: %w", err)
		}
		for _, c := range courses {
			infos = append(infos, courseInfo{ID: c.ID, Collection: c.Collection})
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleCourseResource resolves one course, falling back to the default
// collection name for unconfigured courses.
func (s *Server) handleCourseResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	courseID := extractCourseID(req.Params.URI)
	if courseID == "" || s.ports.Settings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	course, err := s.ports.Settings.ResolveCourse(courseID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, courseInfo{ID: course.ID, Collection: course.Collection})
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

// extractCourseID extracts the course id from coursemate://courses/{courseId}.
func extractCourseID(uri string) string {
	const prefix = uriScheme + "courses/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return domain.NormaliseCourseID(id)
}

// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Mythril capture tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/search"
	"github.com/Zarosk/mythril-core/internal/taskflow"
)

// Server wraps the MCP server with Mythril tools.
type Server struct {
	mcp     *server.MCPServer
	tasks   *taskflow.Engine
	capture *capture.Service
	search  *search.Engine
}

// New creates a new MCP server with all Mythril tools registered.
func New(tasks *taskflow.Engine, cap *capture.Service, se *search.Engine) *Server {
	s := &Server{tasks: tasks, capture: cap, search: se}

	s.mcp = server.NewMCPServer(
		"Mythril",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("capture_note",
		mcp.WithDescription("Capture a free-text note, optionally scoped to a project and tagged. "+
			"Read the capture contract first via the get_capture_contract tool or the "+
			"mythril://capture-format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
		mcp.WithString("project", mcp.Description("Optional project slug")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.captureNote)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a queued task in a project. The task id is allocated "+
			"from the project prefix (e.g. DEMO-001)."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title (max 200 chars)")),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name; sanitized to a slug")),
		mcp.WithString("description", mcp.Description("Optional task description")),
		mcp.WithString("priority", mcp.Description("LOW, NORMAL, HIGH, or CRITICAL")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("activate_task",
		mcp.WithDescription("Activate a task. Any other active task in the same project is "+
			"demoted to queued; completed or cancelled tasks cannot be activated."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id, e.g. DEMO-001")),
	), s.activateTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("get_task_queue",
		mcp.WithDescription("List queued tasks for a project, highest priority first."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project slug")),
	), s.getTaskQueue)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Substring search across notes, artifacts, and tasks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("project", mcp.Description("Optional project filter")),
	), s.searchAll)

	s.mcp.AddTool(mcp.NewTool("get_capture_contract",
		mcp.WithDescription("Returns the canonical Mythril capture contract. "+
			"Call this before submitting notes, artifacts, or tasks."),
	), s.getCaptureContract)

	// Resource: capture format contract.
	s.mcp.AddResource(
		mcp.NewResource("mythril://capture-format", "Capture Format Contract",
			mcp.WithResourceDescription("Conventions for notes, artifacts, tasks, and projects."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCaptureContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) captureNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project := req.GetString("project", "")
	var tags []string
	if raw := req.GetString("tags", ""); raw != "" {
		tags = strings.Split(raw, ",")
	}

	note, err := s.capture.CreateNote(capture.NoteInput{Content: content, Project: project, Tags: tags})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("captured note: %s", note.ID)), nil
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := s.tasks.Create(taskflow.CreateInput{
		Title:       title,
		Project:     project,
		Description: req.GetString("description", ""),
		Priority:    models.Priority(req.GetString("priority", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created task: %s", task.ID)), nil
}

func (s *Server) activateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := s.tasks.Activate(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("activated: %s (%s)", task.ID, task.Title)), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := s.tasks.Complete(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("completed: %s (%s)", task.ID, task.Title)), nil
}

func (s *Server) getTaskQueue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tasks, err := s.tasks.Queued(project, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tasks) == 0 {
		return mcp.NewToolResultText("queue is empty"), nil
	}
	var lines []string
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("%s [%s] %s", t.ID, t.Priority, t.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.search.Search(query, search.Options{Project: req.GetString("project", "")})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCaptureContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CaptureContract), nil
}

func (s *Server) readCaptureContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mythril://capture-format",
			MIMEType: "text/markdown",
			Text:     CaptureContract,
		},
	}, nil
}

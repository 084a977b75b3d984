package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/search"
	"github.com/Zarosk/mythril-core/internal/taskflow"
	"github.com/Zarosk/mythril-core/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.TestDB(t)
	logger := testutil.SilentLogger()
	return New(
		taskflow.NewEngine(db, nil, logger),
		capture.NewService(db, nil, logger),
		search.NewEngine(db),
	)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "capture_note":
		result, err = srv.captureNote(ctx, req)
	case "create_task":
		result, err = srv.createTask(ctx, req)
	case "activate_task":
		result, err = srv.activateTask(ctx, req)
	case "complete_task":
		result, err = srv.completeTask(ctx, req)
	case "get_task_queue":
		result, err = srv.getTaskQueue(ctx, req)
	case "search":
		result, err = srv.searchAll(ctx, req)
	case "get_capture_contract":
		result, err = srv.getCaptureContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateTaskTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_task", map[string]interface{}{
		"title":   "wire the mcp surface",
		"project": "demo",
	})
	if r.IsError {
		t.Fatalf("create_task errored: %q", resultText(r))
	}
	if got := resultText(r); got != "created task: DEMO-001" {
		t.Errorf("result = %q", got)
	}
}

func TestCreateTaskToolMissingArgs(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_task", map[string]interface{}{"title": "t"})
	if !r.IsError {
		t.Error("expected error without project")
	}
}

func TestTaskLifecycleTools(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_task", map[string]interface{}{"title": "one", "project": "demo"})
	callTool(t, srv, "create_task", map[string]interface{}{
		"title": "two", "project": "demo", "priority": "CRITICAL",
	})

	r := callTool(t, srv, "get_task_queue", map[string]interface{}{"project": "demo"})
	queue := resultText(r)
	lines := strings.Split(queue, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "DEMO-002") {
		t.Errorf("queue = %q, want CRITICAL first", queue)
	}

	r = callTool(t, srv, "activate_task", map[string]interface{}{"id": "DEMO-001"})
	if r.IsError {
		t.Fatalf("activate errored: %q", resultText(r))
	}

	r = callTool(t, srv, "complete_task", map[string]interface{}{"id": "DEMO-001"})
	if r.IsError {
		t.Fatalf("complete errored: %q", resultText(r))
	}

	// Terminal task cannot be re-activated.
	r = callTool(t, srv, "activate_task", map[string]interface{}{"id": "DEMO-001"})
	if !r.IsError {
		t.Error("expected error activating a completed task")
	}
}

func TestCaptureNoteTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "capture_note", map[string]interface{}{
		"content": "mcp surfaced note",
		"tags":    "mcp, inbox",
	})
	if r.IsError {
		t.Fatalf("capture_note errored: %q", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "captured note: ") {
		t.Errorf("result = %q", resultText(r))
	}

	r = callTool(t, srv, "search", map[string]interface{}{"query": "surfaced"})
	if r.IsError {
		t.Fatalf("search errored: %q", resultText(r))
	}
	if !strings.Contains(resultText(r), `"type": "note"`) {
		t.Errorf("search result = %q, want a note hit", resultText(r))
	}
}

func TestQueueEmptyTool(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_task_queue", map[string]interface{}{"project": "empty"})
	if got := resultText(r); got != "queue is empty" {
		t.Errorf("result = %q", got)
	}
}

func TestCaptureContractTool(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_capture_contract", map[string]interface{}{})
	text := resultText(r)
	for _, want := range []string{"note", "task", "project"} {
		if !strings.Contains(strings.ToLower(text), want) {
			t.Errorf("contract missing %q", want)
		}
	}
}

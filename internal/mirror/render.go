package mirror

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zarosk/mythril-core/internal/models"
)

// Frontmatter shapes for the human-readable Markdown files. Field order is
// the render order.

type taskFrontmatter struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"`
	Project   string `yaml:"project"`
	Title     string `yaml:"title"`
	Status    string `yaml:"status"`
	Trust     string `yaml:"trust_level"`
	Priority  string `yaml:"priority"`
	Created   string `yaml:"created"`
	Started   string `yaml:"started,omitempty"`
	Completed string `yaml:"completed,omitempty"`
}

type noteFrontmatter struct {
	ID      string   `yaml:"id"`
	Kind    string   `yaml:"kind"`
	Project string   `yaml:"project,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
	Created string   `yaml:"created"`
	Updated string   `yaml:"updated"`
}

type artifactFrontmatter struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	Title       string `yaml:"title"`
	ContentType string `yaml:"content_type"`
	Project     string `yaml:"project,omitempty"`
	Created     string `yaml:"created"`
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func stampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return stamp(*t)
}

// render assembles a Markdown document: YAML frontmatter fences, blank
// line, body, trailing newline.
func render(fm any, body string) ([]byte, error) {
	meta, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("mirror: marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	if body == "" || body[len(body)-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// RenderTask produces the mirrored Markdown form of a task.
func RenderTask(t *models.Task) ([]byte, error) {
	body := "# " + t.Title + "\n"
	if t.Description != "" {
		body += "\n" + t.Description + "\n"
	}
	return render(taskFrontmatter{
		ID:        t.ID,
		Kind:      "task",
		Project:   t.Project,
		Title:     t.Title,
		Status:    string(t.Status),
		Trust:     string(t.TrustLevel),
		Priority:  string(t.Priority),
		Created:   stamp(t.CreatedAt),
		Started:   stampPtr(t.StartedAt),
		Completed: stampPtr(t.CompletedAt),
	}, body)
}

// RenderNote produces the mirrored Markdown form of a note.
func RenderNote(n *models.Note) ([]byte, error) {
	return render(noteFrontmatter{
		ID:      n.ID,
		Kind:    "note",
		Project: n.Project,
		Tags:    n.Tags,
		Created: stamp(n.CreatedAt),
		Updated: stamp(n.UpdatedAt),
	}, n.Content)
}

// RenderArtifact produces the mirrored Markdown form of an artifact.
func RenderArtifact(a *models.Artifact) ([]byte, error) {
	body := "# " + a.Title + "\n\n" + a.Content
	return render(artifactFrontmatter{
		ID:          a.ID,
		Kind:        "artifact",
		Title:       a.Title,
		ContentType: a.ContentType,
		Project:     a.Project,
		Created:     stamp(a.CreatedAt),
	}, body)
}

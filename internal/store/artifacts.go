package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Zarosk/mythril-core/internal/models"
)

const artifactColumns = `id, title, content, content_type, project, created_at`

func scanArtifact(row interface{ Scan(...any) error }) (*models.Artifact, error) {
	var a models.Artifact
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.ContentType, &a.Project, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertArtifact persists a new artifact row.
func (db *DB) InsertArtifact(a *models.Artifact) error {
	_, err := db.conn.Exec(`
		INSERT INTO artifacts (id, title, content, content_type, project, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Title, a.Content, a.ContentType, a.Project, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert artifact: %w", err)
	}
	return nil
}

// GetArtifact returns the artifact with the given id, or nil when absent.
func (db *DB) GetArtifact(id string) (*models.Artifact, error) {
	a, err := scanArtifact(db.conn.QueryRow(`SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get artifact: %w", err)
	}
	return a, nil
}

// DeleteArtifact removes the artifact row. Reports whether a row was deleted.
func (db *DB) DeleteArtifact(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete artifact: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// ListArtifacts returns artifacts newest first, optionally filtered by project.
func (db *DB) ListArtifacts(project string, limit int) ([]models.Artifact, error) {
	if limit <= 0 {
		limit = 50
	}
	args := []any{}
	query := `SELECT ` + artifactColumns + ` FROM artifacts`
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list artifacts: %w", err)
	}
	defer rows.Close()

	var out []models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SearchArtifacts returns artifacts whose title or content contains q
// (case-insensitive), optionally restricted to a project, in insertion order.
func (db *DB) SearchArtifacts(q, project string, limit int) ([]models.Artifact, error) {
	if limit <= 0 {
		limit = 20
	}
	lower := strings.ToLower(q)
	args := []any{lower, lower}
	query := `
		SELECT ` + artifactColumns + `
		FROM artifacts
		WHERE (instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0)`
	if project != "" {
		query += ` AND project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search artifacts: %w", err)
	}
	defer rows.Close()

	var out []models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ArtifactTitles returns distinct artifact titles that start with prefix.
// SQLite LIKE is ASCII case-insensitive, so callers wanting case-sensitive
// prefix semantics must re-filter.
func (db *DB) ArtifactTitles(prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT DISTINCT title FROM artifacts WHERE title LIKE ? LIMIT ?
	`, prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("store: artifact titles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		out = append(out, title)
	}
	return out, rows.Err()
}

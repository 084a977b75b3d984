package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Zarosk/mythril-core/internal/models"
)

const noteColumns = `id, content, project, tags, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	var (
		n    models.Note
		tags string
	)
	if err := row.Scan(&n.ID, &n.Content, &n.Project, &tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Tags = models.DecodeTags(tags)
	return &n, nil
}

// InsertNote persists a new note row.
func (db *DB) InsertNote(n *models.Note) error {
	_, err := db.conn.Exec(`
		INSERT INTO notes (id, content, project, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Content, n.Project, n.Tags.Encode(), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert note: %w", err)
	}
	return nil
}

// GetNote returns the note with the given id, or nil when absent.
func (db *DB) GetNote(id string) (*models.Note, error) {
	n, err := scanNote(db.conn.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// UpdateNote replaces the mutable fields of a note. Reports whether a row
// was updated.
func (db *DB) UpdateNote(n *models.Note) (bool, error) {
	res, err := db.conn.Exec(`
		UPDATE notes SET content = ?, project = ?, tags = ?, updated_at = ? WHERE id = ?
	`, n.Content, n.Project, n.Tags.Encode(), n.UpdatedAt, n.ID)
	if err != nil {
		return false, fmt.Errorf("store: update note: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// DeleteNote removes the note row. Reports whether a row was deleted.
func (db *DB) DeleteNote(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete note: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// ListNotes returns notes newest first, optionally filtered by project.
func (db *DB) ListNotes(project string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 50
	}
	args := []any{}
	query := `SELECT ` + noteColumns + ` FROM notes`
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// SearchNotes returns notes whose content contains q (case-insensitive),
// optionally restricted to a project, in insertion order.
func (db *DB) SearchNotes(q, project string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	args := []any{strings.ToLower(q)}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE instr(lower(content), ?) > 0`
	if project != "" {
		query += ` AND project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// NoteTagRows returns the decoded tag set of every note. Rows with
// malformed tag columns decode to an empty set.
func (db *DB) NoteTagRows() ([]models.Tags, error) {
	rows, err := db.conn.Query(`SELECT tags FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("store: note tag rows: %w", err)
	}
	defer rows.Close()

	var out []models.Tags
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		out = append(out, models.DecodeTags(raw))
	}
	return out, rows.Err()
}

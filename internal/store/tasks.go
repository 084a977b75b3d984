package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Zarosk/mythril-core/internal/models"
)

const taskColumns = `id, project, title, description, status, trust_level, priority, created_at, started_at, completed_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var (
		t         models.Task
		started   sql.NullTime
		completed sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Project, &t.Title, &t.Description, &t.Status,
		&t.TrustLevel, &t.Priority, &t.CreatedAt, &started, &completed)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		ts := started.Time
		t.StartedAt = &ts
	}
	if completed.Valid {
		ts := completed.Time
		t.CompletedAt = &ts
	}
	return &t, nil
}

// InsertTask persists a new task row.
func (db *DB) InsertTask(t *models.Task) error {
	_, err := db.conn.Exec(`
		INSERT INTO tasks (id, project, title, description, status, trust_level, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Project, t.Title, t.Description, t.Status, t.TrustLevel, t.Priority, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert task: %w", err)
	}
	return nil
}

// GetTask returns the task with the given id, or nil when absent.
func (db *DB) GetTask(id string) (*models.Task, error) {
	t, err := scanTask(db.conn.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return t, nil
}

// MaxTaskSuffix returns the highest numeric id suffix among tasks whose id
// starts with prefix+"-", or 0 when none exist. The suffix is the digits
// after the final dash; ids that fail to parse are skipped.
func (db *DB) MaxTaskSuffix(prefix string) (int, error) {
	rows, err := db.conn.Query(`SELECT id FROM tasks WHERE id LIKE ?`, prefix+"-%")
	if err != nil {
		return 0, fmt.Errorf("store: max task suffix: %w", err)
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		// LIKE treats _ as a single-char wildcard, so re-check the prefix.
		if !strings.HasPrefix(id, prefix+"-") {
			continue
		}
		dash := strings.LastIndex(id, "-")
		n, convErr := strconv.Atoi(id[dash+1:])
		if convErr != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, rows.Err()
}

// ActivateTask demotes every other active task in the project to queued and
// marks the given task active, all within one transaction. started_at is
// only assigned when previously unset.
func (db *DB) ActivateTask(id, project string, now time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`
		UPDATE tasks SET status = ? WHERE project = ? AND status = ? AND id <> ?
	`, models.StatusQueued, project, models.StatusActive, id); err != nil {
		return fmt.Errorf("store: demote active: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE tasks SET status = ?, started_at = COALESCE(started_at, ?) WHERE id = ?
	`, models.StatusActive, now, id); err != nil {
		return fmt.Errorf("store: activate task: %w", err)
	}

	return tx.Commit()
}

// CompleteTask marks the task completed. Reports whether a row was updated.
func (db *DB) CompleteTask(id string, now time.Time) (bool, error) {
	res, err := db.conn.Exec(`
		UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?
	`, models.StatusCompleted, now, id)
	if err != nil {
		return false, fmt.Errorf("store: complete task: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CancelTask marks the task cancelled. Reports whether a row was updated.
func (db *DB) CancelTask(id string) (bool, error) {
	res, err := db.conn.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, models.StatusCancelled, id)
	if err != nil {
		return false, fmt.Errorf("store: cancel task: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteTask removes the task row. Reports whether a row was deleted.
func (db *DB) DeleteTask(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete task: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ActiveTask returns the single active task for a project, or nil.
func (db *DB) ActiveTask(project string) (*models.Task, error) {
	t, err := scanTask(db.conn.QueryRow(`
		SELECT `+taskColumns+` FROM tasks WHERE project = ? AND status = ? LIMIT 1
	`, project, models.StatusActive))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: active task: %w", err)
	}
	return t, nil
}

// QueuedTasks returns queued tasks for a project ordered by priority rank
// (CRITICAL first) then created_at ascending.
func (db *DB) QueuedTasks(project string, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project = ? AND status = ?
		ORDER BY CASE priority
			WHEN 'CRITICAL' THEN 0
			WHEN 'HIGH'     THEN 1
			WHEN 'NORMAL'   THEN 2
			WHEN 'LOW'      THEN 3
			ELSE 4
		END, created_at ASC
		LIMIT ?
	`, project, models.StatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("store: queued tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// SearchTasks returns tasks whose title or description contains q
// (case-insensitive), optionally restricted to a project, in insertion order.
func (db *DB) SearchTasks(q, project string, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = 20
	}
	lower := strings.ToLower(q)
	args := []any{lower, lower}
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE (instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0)`
	if project != "" {
		query += ` AND project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

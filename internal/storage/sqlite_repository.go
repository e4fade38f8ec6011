package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens (creating if needed) the database at path, runs migrations
// and returns a repository over it.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertDueEvent(ctx context.Context, in DueEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO due_events (task_id, kind, recorded_at, list, importance, size, due)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (task_id, kind) DO UPDATE SET
			recorded_at = excluded.recorded_at,
			list = excluded.list,
			importance = excluded.importance,
			size = excluded.size,
			due = excluded.due`,
		in.TaskID, int(in.Kind), mustTime(in.RecordedAt), in.List, in.Importance, in.Size, mustTime(in.Due),
	)
	return err
}

func (r *SQLiteRepository) ListDueEvents(ctx context.Context, filter DueEventFilter) ([]DueEvent, error) {
	where, args := dueEventWhere(filter)
	query := `SELECT task_id, kind, recorded_at, list, importance, size, due FROM due_events` + where
	query += ` ORDER BY recorded_at ASC, task_id ASC, kind ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DueEvent, 0)
	for rows.Next() {
		ev, scanErr := scanDueEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// DeleteDueEvents removes the rows matching filter and reports how many went.
// A filter without a task id is rejected; use ClearDueEvents to wipe history.
func (r *SQLiteRepository) DeleteDueEvents(ctx context.Context, filter DueEventFilter) (int64, error) {
	if strings.TrimSpace(filter.TaskID) == "" {
		return 0, ErrEmptyFilter
	}
	where, args := dueEventWhere(filter)
	res, err := r.db.ExecContext(ctx, `DELETE FROM due_events`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) ClearDueEvents(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM due_events`)
	return err
}

func dueEventWhere(filter DueEventFilter) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 8)
	if filter.TaskID != "" {
		clauses = append(clauses, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if len(filter.Kinds) > 0 {
		marks := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			marks = append(marks, "?")
			args = append(args, int(k))
		}
		clauses = append(clauses, "kind IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.List != "" {
		clauses = append(clauses, "list = ?")
		args = append(args, filter.List)
	}
	if filter.Size != nil {
		clauses = append(clauses, "size = ?")
		args = append(args, *filter.Size)
	}
	if filter.Importance != nil {
		clauses = append(clauses, "importance = ?")
		args = append(args, *filter.Importance)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteRepository) SaveList(ctx context.Context, in ListRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lists (uuid, name, color, position)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (uuid) DO UPDATE SET name = excluded.name, position = excluded.position`,
		in.UUID, in.Name, in.Color, in.Position,
	)
	return err
}

func (r *SQLiteRepository) ListLists(ctx context.Context) ([]ListRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT uuid, name, color, position FROM lists ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ListRecord, 0)
	for rows.Next() {
		var item ListRecord
		if err := rows.Scan(&item.UUID, &item.Name, &item.Color, &item.Position); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteList(ctx context.Context, uuid string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE uuid = ?`, uuid)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SaveTask(ctx context.Context, in TaskRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, size, importance, due, completed, deleted, list_uuid, parent_id, position, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			size = excluded.size,
			importance = excluded.importance,
			due = excluded.due,
			completed = excluded.completed,
			deleted = excluded.deleted,
			list_uuid = excluded.list_uuid,
			parent_id = excluded.parent_id,
			position = excluded.position,
			completed_at = excluded.completed_at`,
		in.ID, in.Name, in.Size, in.Importance, mustTime(in.Due), boolInt(in.Completed), boolInt(in.Deleted),
		in.ListUUID, nullString(in.ParentID), in.Position, mustTime(in.CreatedAt), nullTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (TaskRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, size, importance, due, completed, deleted, list_uuid, parent_id, position, created_at, completed_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TaskRecord{}, ErrNotFound
		}
		return TaskRecord{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]TaskRecord, error) {
	query := `SELECT id, name, size, importance, due, completed, deleted, list_uuid, parent_id, position, created_at, completed_at FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.ListUUID != "" {
		clauses = append(clauses, "list_uuid = ?")
		args = append(args, filter.ListUUID)
	}
	if !filter.IncludeDeleted {
		clauses = append(clauses, "deleted = 0")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY position ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TaskRecord, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDueEvent(s scanner) (DueEvent, error) {
	var out DueEvent
	var kind int
	var recorded, due string
	if err := s.Scan(&out.TaskID, &kind, &recorded, &out.List, &out.Importance, &out.Size, &due); err != nil {
		return DueEvent{}, err
	}
	recordedAt, err := parseRequiredTime(recorded)
	if err != nil {
		return DueEvent{}, err
	}
	dueAt, err := parseRequiredTime(due)
	if err != nil {
		return DueEvent{}, err
	}
	out.Kind = DueEventKind(kind)
	out.RecordedAt = recordedAt
	out.Due = dueAt
	return out, nil
}

func scanTask(s scanner) (TaskRecord, error) {
	var out TaskRecord
	var due, created string
	var completed, deleted int
	var parent, completedAt sql.NullString
	if err := s.Scan(&out.ID, &out.Name, &out.Size, &out.Importance, &due, &completed, &deleted,
		&out.ListUUID, &parent, &out.Position, &created, &completedAt); err != nil {
		return TaskRecord{}, err
	}
	dueAt, err := parseRequiredTime(due)
	if err != nil {
		return TaskRecord{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return TaskRecord{}, err
	}
	doneAt, err := parseNullableTime(completedAt)
	if err != nil {
		return TaskRecord{}, err
	}
	out.Due = dueAt
	out.CreatedAt = createdAt
	out.CompletedAt = doneAt
	out.Completed = completed == 1
	out.Deleted = deleted == 1
	if parent.Valid {
		out.ParentID = parent.String
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"todo-collab/pkg/database"

	"github.com/jmoiron/sqlx"
)

// Tables lists every table in creation order.
var Tables = []string{"users", "tasks", "group_tasks", "group_task_assignees", "comments", "friendships"}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT,
    image TEXT,
    hashed_password TEXT,
    created_at {{timestamp}} NOT NULL,
    updated_at {{timestamp}} NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    category TEXT,
    category_color TEXT,
    subtasks TEXT NOT NULL DEFAULT '[]',
    due_date {{timestamp}},
    created_at {{timestamp}} NOT NULL,
    updated_at {{timestamp}} NOT NULL
);

CREATE TABLE IF NOT EXISTS group_tasks (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    category TEXT,
    category_color TEXT,
    subtasks TEXT NOT NULL DEFAULT '[]',
    due_date {{timestamp}},
    created_at {{timestamp}} NOT NULL,
    updated_at {{timestamp}} NOT NULL
);

CREATE TABLE IF NOT EXISTS group_task_assignees (
    id TEXT PRIMARY KEY,
    group_task_id TEXT NOT NULL REFERENCES group_tasks (id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at {{timestamp}} NOT NULL,
    updated_at {{timestamp}} NOT NULL,
    UNIQUE (group_task_id, user_id)
);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    group_task_id TEXT NOT NULL REFERENCES group_tasks (id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    created_at {{timestamp}} NOT NULL
);

CREATE TABLE IF NOT EXISTS friendships (
    id TEXT PRIMARY KEY,
    initiator_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    receiver_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    user_low TEXT NOT NULL,
    user_high TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at {{timestamp}} NOT NULL,
    updated_at {{timestamp}} NOT NULL,
    UNIQUE (user_low, user_high)
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id);
CREATE INDEX IF NOT EXISTS idx_group_tasks_owner_id ON group_tasks (owner_id);
CREATE INDEX IF NOT EXISTS idx_group_task_assignees_user_id ON group_task_assignees (user_id);
CREATE INDEX IF NOT EXISTS idx_comments_group_task_id ON comments (group_task_id);
CREATE INDEX IF NOT EXISTS idx_friendships_receiver_id ON friendships (receiver_id);
`

func schemaFor(driver string) string {
	ts := "TIMESTAMPTZ"
	if driver == database.DriverSQLite {
		// modernc parses DATETIME columns back into time.Time.
		ts = "DATETIME"
	}
	return strings.ReplaceAll(schema, "{{timestamp}}", ts)
}

func CreateTablesIfNotExists(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaFor(db.DriverName())); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

func DropAllTables(ctx context.Context, db *sqlx.DB) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+Tables[i]); err != nil {
			return fmt.Errorf("dropping %s: %w", Tables[i], err)
		}
	}
	return nil
}

type TableCount struct {
	Table string
	Rows  int
}

// TableCounts reports the row count of every table.
func TableCounts(ctx context.Context, db *sqlx.DB) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		var n int
		if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

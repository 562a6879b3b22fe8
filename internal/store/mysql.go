package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// MySQLStore keeps one JSON document per project in a single table.
// The grid is small enough that whole-document writes are cheaper and
// simpler than per-seat rows, and they match the engine's
// snapshot-per-mutation write pattern.
type MySQLStore struct {
    db *sql.DB
}

// NewMySQLStore returns a store bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// EnsureSchema creates the projects table when it does not exist yet.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
    const ddl = `CREATE TABLE IF NOT EXISTS projects (
        id         BIGINT UNSIGNED NOT NULL PRIMARY KEY,
        data       JSON            NOT NULL,
        updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    )`
    if _, err := s.db.ExecContext(ctx, ddl); err != nil {
        return fmt.Errorf("ensure schema: %w", err)
    }
    return nil
}

// LoadAll reads and decodes every project document.
func (s *MySQLStore) LoadAll(ctx context.Context) ([]*model.Project, error) {
    rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM projects ORDER BY id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var projects []*model.Project
    for rows.Next() {
        var id uint64
        var raw []byte
        if err := rows.Scan(&id, &raw); err != nil {
            return nil, err
        }
        var p model.Project
        if err := json.Unmarshal(raw, &p); err != nil {
            return nil, fmt.Errorf("decode project %d: %w", id, err)
        }
        projects = append(projects, &p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return projects, nil
}

// SaveProject upserts the project's JSON document.
func (s *MySQLStore) SaveProject(ctx context.Context, p *model.Project) error {
    raw, err := json.Marshal(p)
    if err != nil {
        return fmt.Errorf("encode project %d: %w", p.ID, err)
    }
    const q = `INSERT INTO projects (id, data) VALUES (?, ?)
               ON DUPLICATE KEY UPDATE data = VALUES(data)`
    if _, err := s.db.ExecContext(ctx, q, p.ID, raw); err != nil {
        return fmt.Errorf("save project %d: %w", p.ID, err)
    }
    return nil
}

// DeleteProject removes the project's document.
func (s *MySQLStore) DeleteProject(ctx context.Context, id uint64) error {
    if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
        return fmt.Errorf("delete project %d: %w", id, err)
    }
    return nil
}

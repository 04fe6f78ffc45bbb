package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS workspaces (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	icon             TEXT,
	color            TEXT,
	partition        TEXT NOT NULL,
	settings_json    TEXT,
	created_at       INTEGER NOT NULL,
	last_accessed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workspaces_last_accessed_at ON workspaces(last_accessed_at);

CREATE TABLE IF NOT EXISTS tabs (
	id               TEXT PRIMARY KEY,
	workspace_id     TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	url              TEXT NOT NULL,
	title            TEXT,
	favicon          TEXT,
	active           INTEGER NOT NULL,
	suspended        INTEGER NOT NULL,
	created_at       INTEGER NOT NULL,
	last_accessed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tabs_workspace_id ON tabs(workspace_id);
CREATE INDEX IF NOT EXISTS idx_tabs_active ON tabs(active);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// MaxBookmarks caps each workspace's bookmark list, most-recent-first.
const MaxBookmarks = 100

// Store provides durable CRUD for workspaces, tabs, and settings.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Single connection: pragmas hold for every statement and writes
	// serialize at the database level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	if err := ensureVersion(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureVersion(db *sql.DB) error {
	var ver int
	err := db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&ver)
	if err == sql.ErrNoRows {
		_, err = db.Exec(`INSERT INTO schema_meta(version) VALUES(?)`, schemaVersion)
		return err
	}
	if err != nil {
		return err
	}
	if ver != schemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", ver, schemaVersion)
	}
	return nil
}

// SaveWorkspace upserts a workspace record, keyed by id. Idempotent.
func (s *Store) SaveWorkspace(ws *types.Workspace) error {
	settings, err := marshalSettings(ws.Settings)
	if err != nil {
		return fmt.Errorf("marshal workspace settings: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO workspaces(id,name,icon,color,partition,settings_json,created_at,last_accessed_at)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			icon=excluded.icon,
			color=excluded.color,
			partition=excluded.partition,
			settings_json=excluded.settings_json,
			created_at=excluded.created_at,
			last_accessed_at=excluded.last_accessed_at`,
		ws.ID, ws.Name, ws.Icon, ws.Color, ws.Partition, settings,
		ws.CreatedAt.UnixMilli(), ws.LastAccessedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save workspace %s: %w", ws.ID, err)
	}
	return nil
}

// LoadWorkspace returns the workspace with the given id, or nil if absent.
func (s *Store) LoadWorkspace(id string) (*types.Workspace, error) {
	row := s.db.QueryRow(`
		SELECT id,name,icon,color,partition,settings_json,created_at,last_accessed_at
		FROM workspaces WHERE id = ?`, id)

	ws, err := scanWorkspace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", id, err)
	}
	return ws, nil
}

// LoadAllWorkspaces returns every workspace, most recently accessed first.
func (s *Store) LoadAllWorkspaces() ([]*types.Workspace, error) {
	rows, err := s.db.Query(`
		SELECT id,name,icon,color,partition,settings_json,created_at,last_accessed_at
		FROM workspaces ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("load workspaces: %w", err)
	}
	defer rows.Close()

	var out []*types.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load workspaces: %w", err)
	}
	return out, nil
}

// DeleteWorkspace removes a workspace and, through the FK cascade, every tab
// belonging to it, atomically.
func (s *Store) DeleteWorkspace(id string) error {
	if _, err := s.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workspace %s: %w", id, err)
	}
	return nil
}

// SaveTabs replaces the entire persisted tab set for a workspace in one
// transaction: every given tab is upserted, then any persisted tab for the
// workspace not in the given set is deleted.
func (s *Store) SaveTabs(workspaceID string, tabs []*types.Tab) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save tabs for %s: %w", workspaceID, err)
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`
		INSERT INTO tabs(id,workspace_id,url,title,favicon,active,suspended,created_at,last_accessed_at)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id=excluded.workspace_id,
			url=excluded.url,
			title=excluded.title,
			favicon=excluded.favicon,
			active=excluded.active,
			suspended=excluded.suspended,
			created_at=excluded.created_at,
			last_accessed_at=excluded.last_accessed_at`)
	if err != nil {
		return fmt.Errorf("save tabs for %s: %w", workspaceID, err)
	}
	defer upsert.Close()

	for _, t := range tabs {
		_, err := upsert.Exec(
			t.ID, workspaceID, t.URL, t.Title, t.Favicon,
			boolToInt(t.Active), boolToInt(t.Suspended),
			t.CreatedAt.UnixMilli(), t.LastAccessedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("upsert tab %s: %w", t.ID, err)
		}
	}

	if len(tabs) == 0 {
		if _, err := tx.Exec(`DELETE FROM tabs WHERE workspace_id = ?`, workspaceID); err != nil {
			return fmt.Errorf("clear tabs for %s: %w", workspaceID, err)
		}
	} else {
		placeholders := strings.Repeat("?,", len(tabs))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]interface{}, 0, len(tabs)+1)
		args = append(args, workspaceID)
		for _, t := range tabs {
			args = append(args, t.ID)
		}
		q := fmt.Sprintf(`DELETE FROM tabs WHERE workspace_id = ? AND id NOT IN (%s)`, placeholders)
		if _, err := tx.Exec(q, args...); err != nil {
			return fmt.Errorf("prune tabs for %s: %w", workspaceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save tabs for %s: %w", workspaceID, err)
	}
	return nil
}

// LoadTabs returns a workspace's tabs, most recently accessed first.
func (s *Store) LoadTabs(workspaceID string) ([]*types.Tab, error) {
	rows, err := s.db.Query(`
		SELECT id,workspace_id,url,title,favicon,active,suspended,created_at,last_accessed_at
		FROM tabs WHERE workspace_id = ? ORDER BY last_accessed_at DESC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load tabs for %s: %w", workspaceID, err)
	}
	defer rows.Close()

	var out []*types.Tab
	for rows.Next() {
		var (
			t                 types.Tab
			active, suspended int
			created, accessed int64
		)
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.URL, &t.Title, &t.Favicon,
			&active, &suspended, &created, &accessed); err != nil {
			return nil, fmt.Errorf("scan tab: %w", err)
		}
		t.Active = active != 0
		t.Suspended = suspended != 0
		t.CreatedAt = time.UnixMilli(created)
		t.LastAccessedAt = time.UnixMilli(accessed)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tabs for %s: %w", workspaceID, err)
	}
	return out, nil
}

// SetSetting stores a JSON-encoded value under key.
func (s *Store) SetSetting(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal setting %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings(key,value) VALUES(?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, string(data))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// GetSetting decodes the value stored under key into out. Returns false if
// the key is absent.
func (s *Store) GetSetting(key string, out interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// DeleteSetting removes a setting. No-op if absent.
func (s *Store) DeleteSetting(key string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

func bookmarkKey(workspaceID string) string {
	return "bookmarks:" + workspaceID
}

// ListBookmarks returns a workspace's bookmark list, most recent first.
func (s *Store) ListBookmarks(workspaceID string) ([]string, error) {
	var list []string
	ok, err := s.GetSetting(bookmarkKey(workspaceID), &list)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return list, nil
}

// AddBookmark inserts url at the front of the workspace's bookmark list,
// removing any existing occurrence and capping the list at MaxBookmarks.
func (s *Store) AddBookmark(workspaceID, url string) ([]string, error) {
	list, err := s.ListBookmarks(workspaceID)
	if err != nil {
		return nil, err
	}

	next := make([]string, 0, len(list)+1)
	next = append(next, url)
	for _, u := range list {
		if u != url {
			next = append(next, u)
		}
	}
	if len(next) > MaxBookmarks {
		next = next[:MaxBookmarks]
	}

	if err := s.SetSetting(bookmarkKey(workspaceID), next); err != nil {
		return nil, err
	}
	return next, nil
}

// RemoveBookmark removes url from the workspace's bookmark list.
func (s *Store) RemoveBookmark(workspaceID, url string) ([]string, error) {
	list, err := s.ListBookmarks(workspaceID)
	if err != nil {
		return nil, err
	}

	next := make([]string, 0, len(list))
	for _, u := range list {
		if u != url {
			next = append(next, u)
		}
	}

	if err := s.SetSetting(bookmarkKey(workspaceID), next); err != nil {
		return nil, err
	}
	return next, nil
}

func marshalSettings(s *types.WorkspaceSettings) (*string, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	str := string(data)
	return &str, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkspace(row scanner) (*types.Workspace, error) {
	var (
		ws                types.Workspace
		settings          *string
		created, accessed int64
	)
	err := row.Scan(&ws.ID, &ws.Name, &ws.Icon, &ws.Color, &ws.Partition,
		&settings, &created, &accessed)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		var decoded types.WorkspaceSettings
		if err := json.Unmarshal([]byte(*settings), &decoded); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		ws.Settings = &decoded
	}
	ws.CreatedAt = time.UnixMilli(created)
	ws.LastAccessedAt = time.UnixMilli(accessed)
	return &ws, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

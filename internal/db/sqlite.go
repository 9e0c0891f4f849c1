package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/launchpilot/campaignchat/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a conversation or workflow id does not resolve.
	ErrNotFound = errors.New("record not found")
	// ErrStaleVersion is returned when an update observed an older version of
	// the record than the one currently stored.
	ErrStaleVersion = errors.New("stale record version")
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    workflow_id TEXT NOT NULL,
    messages TEXT NOT NULL,
    collected_params TEXT NOT NULL,
    is_completed INTEGER NOT NULL DEFAULT 0,
    export_path TEXT NOT NULL DEFAULT '',
    version INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS workflows (
    id TEXT PRIMARY KEY,
    definition TEXT NOT NULL
);`

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

func (db *Database) CreateConversation(conv *models.Conversation) error {
	messages, params, err := encodeDocument(conv)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO conversations (id, workflow_id, messages, collected_params, is_completed, export_path, version, created_at)
        VALUES (?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
        RETURNING version, created_at`

	return db.db.QueryRow(query, conv.ID, conv.WorkflowID, messages, params,
		conv.IsCompleted, conv.ExportPath).Scan(&conv.Version, &conv.CreatedAt)
}

func (db *Database) GetConversation(id string) (*models.Conversation, error) {
	query := `
        SELECT id, workflow_id, messages, collected_params, is_completed, export_path, version, created_at
        FROM conversations
        WHERE id = ?`

	conv := &models.Conversation{}
	var messages, params string
	err := db.db.QueryRow(query, id).Scan(&conv.ID, &conv.WorkflowID, &messages,
		&params, &conv.IsCompleted, &conv.ExportPath, &conv.Version, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	if err := json.Unmarshal([]byte(messages), &conv.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &conv.CollectedParams); err != nil {
		return nil, fmt.Errorf("failed to decode collected params: %w", err)
	}
	return conv, nil
}

// UpdateConversation writes the full record back, guarded by the version the
// caller read. A concurrent writer that got there first leaves the stored
// version ahead of expectedVersion and the write is rejected with
// ErrStaleVersion.
func (db *Database) UpdateConversation(conv *models.Conversation, expectedVersion int64) error {
	messages, params, err := encodeDocument(conv)
	if err != nil {
		return err
	}

	query := `
        UPDATE conversations
        SET messages = ?, collected_params = ?, is_completed = ?, export_path = ?, version = version + 1
        WHERE id = ? AND version = ?`

	result, err := db.db.Exec(query, messages, params, conv.IsCompleted,
		conv.ExportPath, conv.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if affected == 0 {
		var exists int
		err := db.db.QueryRow("SELECT 1 FROM conversations WHERE id = ?", conv.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("conversation %s: %w", conv.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to update conversation: %w", err)
		}
		return fmt.Errorf("conversation %s at version %d: %w", conv.ID, expectedVersion, ErrStaleVersion)
	}

	conv.Version = expectedVersion + 1
	return nil
}

func (db *Database) GetWorkflow(id string) (*models.Workflow, error) {
	query := `SELECT id, definition FROM workflows WHERE id = ?`

	wf := &models.Workflow{}
	var definition string
	err := db.db.QueryRow(query, id).Scan(&wf.ID, &definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workflow %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	wf.Definition = json.RawMessage(definition)
	return wf, nil
}

func (db *Database) PutWorkflow(wf *models.Workflow) error {
	query := `
        INSERT INTO workflows (id, definition) VALUES (?, ?)
        ON CONFLICT(id) DO UPDATE SET definition = excluded.definition`

	if _, err := db.db.Exec(query, wf.ID, string(wf.Definition)); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

func encodeDocument(conv *models.Conversation) (messages, params string, err error) {
	m, err := json.Marshal(conv.Messages)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode messages: %w", err)
	}
	p, err := json.Marshal(conv.CollectedParams)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode collected params: %w", err)
	}
	return string(m), string(p), nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/model"
)

// timeFmt keeps nanosecond precision so memories saved moments apart stay
// strictly ordered, and sorts lexicographically like the rest of the schema.
const timeFmt = time.RFC3339Nano

func openDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func (s *MemoryStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id                 TEXT PRIMARY KEY,
		content            TEXT NOT NULL,
		normalized_content TEXT NOT NULL,
		timestamp          TEXT NOT NULL,
		emotion            TEXT NOT NULL DEFAULT 'neutral',
		importance         INTEGER NOT NULL DEFAULT 3,
		category           TEXT NOT NULL DEFAULT 'daily',
		access_count       INTEGER NOT NULL DEFAULT 0,
		last_accessed      TEXT,
		linked_ids         TEXT NOT NULL DEFAULT '',
		episode_id         TEXT,
		tags               TEXT NOT NULL DEFAULT '',
		links              TEXT NOT NULL DEFAULT '',
		novelty_score      REAL NOT NULL DEFAULT 0,
		prediction_error   REAL NOT NULL DEFAULT 0,
		activation_count   INTEGER NOT NULL DEFAULT 0,
		last_activated     TEXT,
		reading            TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_emotion    ON memories(emotion);
	CREATE INDEX IF NOT EXISTS idx_memories_category   ON memories(category);
	CREATE INDEX IF NOT EXISTS idx_memories_timestamp  ON memories(timestamp);
	CREATE INDEX IF NOT EXISTS idx_memories_importance ON memories(importance);

	CREATE TABLE IF NOT EXISTS embeddings (
		memory_id TEXT PRIMARY KEY REFERENCES memories(id) ON DELETE CASCADE,
		vector    BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS coactivation (
		source_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
		target_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
		weight    REAL NOT NULL CHECK(weight >= 0.0 AND weight <= 1.0),
		PRIMARY KEY (source_id, target_id)
	);
	CREATE INDEX IF NOT EXISTS idx_coactivation_source ON coactivation(source_id);
	CREATE INDEX IF NOT EXISTS idx_coactivation_target ON coactivation(target_id);

	CREATE TABLE IF NOT EXISTS episodes (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time   TEXT,
		memory_ids TEXT NOT NULL DEFAULT '',
		participants TEXT NOT NULL DEFAULT '',
		summary    TEXT NOT NULL DEFAULT '',
		emotion    TEXT NOT NULL DEFAULT 'neutral',
		importance INTEGER NOT NULL DEFAULT 3
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

const memoryColumns = `id, content, normalized_content, timestamp, emotion, importance, category,
	access_count, last_accessed, linked_ids, episode_id, tags, links,
	novelty_score, prediction_error, activation_count, last_activated, reading`

const memoryColumnsPrefixed = `m.id, m.content, m.normalized_content, m.timestamp, m.emotion, m.importance, m.category,
	m.access_count, m.last_accessed, m.linked_ids, m.episode_id, m.tags, m.links,
	m.novelty_score, m.prediction_error, m.activation_count, m.last_activated, m.reading`

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var timestamp string
	var lastAccessed, episodeID, lastActivated, reading sql.NullString
	var linkedIDs, tagsJSON, linksJSON string

	err := row.Scan(
		&m.ID, &m.Content, &m.NormalizedContent, &timestamp, &m.Emotion,
		&m.Importance, &m.Category, &m.AccessCount, &lastAccessed,
		&linkedIDs, &episodeID, &tagsJSON, &linksJSON,
		&m.NoveltyScore, &m.PredictionError, &m.ActivationCount,
		&lastActivated, &reading,
	)
	if err != nil {
		return m, err
	}

	m.Timestamp, _ = time.Parse(timeFmt, timestamp)
	if lastAccessed.Valid && lastAccessed.String != "" {
		t, err := time.Parse(timeFmt, lastAccessed.String)
		if err == nil {
			m.LastAccessed = &t
		}
	}
	if lastActivated.Valid && lastActivated.String != "" {
		t, err := time.Parse(timeFmt, lastActivated.String)
		if err == nil {
			m.LastActivated = &t
		}
	}
	if episodeID.Valid {
		m.EpisodeID = episodeID.String
	}
	if reading.Valid {
		m.Reading = reading.String
	}
	m.LinkedIDs = parseIDList(linkedIDs)
	m.Tags = parseStringList(m.ID, "tags", tagsJSON)
	m.Links = parseLinks(m.ID, linksJSON)
	return m, nil
}

// scanMemoryWithVector scans a memories row joined with its embedding blob.
func scanMemoryWithVector(row scanner) (model.Memory, embedding.Vector, error) {
	var m model.Memory
	var timestamp string
	var lastAccessed, episodeID, lastActivated, reading sql.NullString
	var linkedIDs, tagsJSON, linksJSON string
	var blob []byte

	err := row.Scan(
		&m.ID, &m.Content, &m.NormalizedContent, &timestamp, &m.Emotion,
		&m.Importance, &m.Category, &m.AccessCount, &lastAccessed,
		&linkedIDs, &episodeID, &tagsJSON, &linksJSON,
		&m.NoveltyScore, &m.PredictionError, &m.ActivationCount,
		&lastActivated, &reading, &blob,
	)
	if err != nil {
		return m, nil, err
	}

	m.Timestamp, _ = time.Parse(timeFmt, timestamp)
	if lastAccessed.Valid && lastAccessed.String != "" {
		if t, err := time.Parse(timeFmt, lastAccessed.String); err == nil {
			m.LastAccessed = &t
		}
	}
	if lastActivated.Valid && lastActivated.String != "" {
		if t, err := time.Parse(timeFmt, lastActivated.String); err == nil {
			m.LastActivated = &t
		}
	}
	if episodeID.Valid {
		m.EpisodeID = episodeID.String
	}
	if reading.Valid {
		m.Reading = reading.String
	}
	m.LinkedIDs = parseIDList(linkedIDs)
	m.Tags = parseStringList(m.ID, "tags", tagsJSON)
	m.Links = parseLinks(m.ID, linksJSON)

	vec, err := embedding.DecodeVector(blob)
	if err != nil {
		return m, nil, fmt.Errorf("memory %s: %w", m.ID, err)
	}
	return m, vec, nil
}

func parseIDList(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func joinIDList(ids []string) string {
	return strings.Join(ids, ",")
}

// parseStringList decodes a JSON string array. Corrupt rows become empty, with
// a warning so data loss is visible.
func parseStringList(memoryID, field, raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("dropping corrupt memory field", "memory_id", memoryID, "field", field, "error", err)
		return nil
	}
	return out
}

type linkRow struct {
	TargetID  string `json:"target_id"`
	LinkType  string `json:"link_type"`
	CreatedAt string `json:"created_at"`
	Note      string `json:"note,omitempty"`
}

func parseLinks(memoryID, raw string) []model.Link {
	if raw == "" {
		return nil
	}
	var rows []linkRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		slog.Warn("dropping corrupt memory field", "memory_id", memoryID, "field", "links", "error", err)
		return nil
	}
	links := make([]model.Link, 0, len(rows))
	for _, r := range rows {
		createdAt, _ := time.Parse(timeFmt, r.CreatedAt)
		links = append(links, model.Link{
			TargetID:  r.TargetID,
			LinkType:  r.LinkType,
			CreatedAt: createdAt,
			Note:      r.Note,
		})
	}
	return links
}

func encodeLinks(links []model.Link) (string, error) {
	if len(links) == 0 {
		return "", nil
	}
	rows := make([]linkRow, 0, len(links))
	for _, l := range links {
		rows = append(rows, linkRow{
			TargetID:  l.TargetID,
			LinkType:  l.LinkType,
			CreatedAt: l.CreatedAt.Format(timeFmt),
			Note:      l.Note,
		})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode links: %w", err)
	}
	return string(b), nil
}

func encodeStringList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// loadCoactivations fetches all outgoing coactivation edges for a batch of
// memory ids in one query.
func (s *MemoryStore) loadCoactivations(ctx context.Context, db *sql.DB, ids []string) (map[string][]model.CoactivationEdge, error) {
	out := make(map[string][]model.CoactivationEdge, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.QueryContext(ctx,
		`SELECT source_id, target_id, weight FROM coactivation WHERE source_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var src string
		var edge model.CoactivationEdge
		if err := rows.Scan(&src, &edge.TargetID, &edge.Weight); err != nil {
			return nil, err
		}
		out[src] = append(out[src], edge)
	}
	return out, rows.Err()
}

// GetByID fetches one memory with its coactivation edges.
// Returns ErrNotFound if the id is absent.
func (s *MemoryStore) GetByID(ctx context.Context, memoryID string) (*model.Memory, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, memoryID)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("memory %s: %w", memoryID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	coact, err := s.loadCoactivations(ctx, db, []string{memoryID})
	if err != nil {
		return nil, err
	}
	m.Coactivations = coact[memoryID]
	return &m, nil
}

// GetByIDs fetches a batch of memories. Missing ids are skipped.
func (s *MemoryStore) GetByIDs(ctx context.Context, memoryIDs []string) ([]model.Memory, error) {
	if len(memoryIDs) == 0 {
		return nil, nil
	}
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(memoryIDs)), ",")
	args := make([]interface{}, len(memoryIDs))
	for i, id := range memoryIDs {
		args[i] = id
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachCoactivations(ctx, db, memories)
}

// GetAll returns every stored memory.
func (s *MemoryStore) GetAll(ctx context.Context) ([]model.Memory, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachCoactivations(ctx, db, memories)
}

func (s *MemoryStore) attachCoactivations(ctx context.Context, db *sql.DB, memories []model.Memory) ([]model.Memory, error) {
	if len(memories) == 0 {
		return memories, nil
	}
	ids := make([]string, len(memories))
	for i := range memories {
		ids[i] = memories[i].ID
	}
	coact, err := s.loadCoactivations(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range memories {
		memories[i].Coactivations = coact[memories[i].ID]
	}
	return memories, nil
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tovaldes/postmaster/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    room_code     TEXT PRIMARY KEY,
    snapshot      TEXT NOT NULL,
    last_activity INTEGER NOT NULL
);
`

// SQLiteStore is a write-through snapshot store. Live sessions stay
// authoritative in memory; JSON snapshots are persisted so rooms survive a
// process restart. Lookups hit memory first and fall back to the database.
type SQLiteStore struct {
	mem   *MemoryStore
	sqlDB *sql.DB

	// Serializes snapshot revival so concurrent misses for the same room
	// install a single live instance.
	reviveMu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) a snapshot database at path
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{mem: NewMemoryStore(), sqlDB: sqlDB}, nil
}

// Close closes the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.sqlDB.Close()
}

// Save stores the session in memory and upserts its JSON snapshot
func (s *SQLiteStore) Save(session *models.Session) error {
	if err := s.mem.Save(session); err != nil {
		return err
	}
	session.RLock()
	snapshot, err := json.Marshal(session)
	lastActivity := session.LastActivity.UTC().UnixMilli()
	roomCode := session.RoomCode
	session.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", roomCode, err)
	}
	_, err = s.sqlDB.Exec(`
INSERT INTO sessions (room_code, snapshot, last_activity) VALUES (?, ?, ?)
ON CONFLICT (room_code) DO UPDATE SET snapshot = excluded.snapshot, last_activity = excluded.last_activity`,
		roomCode, string(snapshot), lastActivity)
	if err != nil {
		return fmt.Errorf("persist session %s: %w", roomCode, err)
	}
	return nil
}

// Find retrieves a session, reviving it from its snapshot if the process restarted
func (s *SQLiteStore) Find(roomCode string) (*models.Session, bool) {
	if session, ok := s.mem.Find(roomCode); ok {
		return session, true
	}

	s.reviveMu.Lock()
	defer s.reviveMu.Unlock()
	// A concurrent miss may have revived the room while we waited; there must
	// only ever be one live instance per room code.
	if session, ok := s.mem.Find(roomCode); ok {
		return session, true
	}

	var snapshot string
	err := s.sqlDB.QueryRow(`SELECT snapshot FROM sessions WHERE room_code = ?`, roomCode).Scan(&snapshot)
	if err != nil {
		return nil, false
	}
	session := &models.Session{}
	if err := json.Unmarshal([]byte(snapshot), session); err != nil {
		return nil, false
	}
	// Revived sessions become live again; later finds hit memory.
	_ = s.mem.Save(session)
	return session, true
}

// Delete removes a session from memory and from disk
func (s *SQLiteStore) Delete(roomCode string) bool {
	existed := s.mem.Delete(roomCode)
	res, err := s.sqlDB.Exec(`DELETE FROM sessions WHERE room_code = ?`, roomCode)
	if err == nil && !existed {
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			existed = true
		}
	}
	return existed
}

// Exists checks memory and then disk for a room code
func (s *SQLiteStore) Exists(roomCode string) bool {
	if s.mem.Exists(roomCode) {
		return true
	}
	var one int
	err := s.sqlDB.QueryRow(`SELECT 1 FROM sessions WHERE room_code = ?`, roomCode).Scan(&one)
	return err == nil
}

// ListAll returns every live in-memory session
func (s *SQLiteStore) ListAll() []*models.Session {
	return s.mem.ListAll()
}

// ListInactive returns live sessions idle since before the cutoff
func (s *SQLiteStore) ListInactive(cutoff time.Time) []*models.Session {
	return s.mem.ListInactive(cutoff)
}

// Clear removes all sessions from memory and disk (for tests)
func (s *SQLiteStore) Clear() {
	s.mem.Clear()
	_, _ = s.sqlDB.Exec(`DELETE FROM sessions`)
}
